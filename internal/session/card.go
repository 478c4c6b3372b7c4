package session

import (
	"fmt"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// CardMeta is what ends up encoded in the session info card.
type CardMeta struct {
	Session     string
	TotalLayers int
	Frames      int
	IntervalSec float64
	Video       string
}

// WriteInfoCard drops an info.png QR code into the session directory so the
// print's capture metadata can be read back with a phone scan.
func (s *Session) WriteInfoCard(meta CardMeta) error {
	payload := fmt.Sprintf("printlapse session=%s layers=%d frames=%d interval=%.2fs video=%s",
		meta.Session, meta.TotalLayers, meta.Frames, meta.IntervalSec, filepath.Base(meta.Video))
	return qrcode.WriteFile(payload, qrcode.Medium, 512, filepath.Join(s.Dir, "info.png"))
}
