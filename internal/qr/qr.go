package qr

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload builds the scannable encoding for a booking. Field order is fixed:
// the verification endpoint's response is reconstructable from this string.
func Payload(reference, flightNumber, name string, tickets int) string {
	return fmt.Sprintf("ref=%s|flight=%s|name=%s|tickets=%d", reference, flightNumber, name, tickets)
}

// Generator renders booking QR codes as PNG files under a media directory.
type Generator struct {
	dir string
}

func NewGenerator(dir string) *Generator {
	return &Generator{dir: dir}
}

func (g *Generator) Generate(payload, reference string) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	path := filepath.Join(g.dir, reference+".png")
	if err := qrcode.WriteFile(payload, qrcode.Medium, 256, path); err != nil {
		return "", fmt.Errorf("write qr code: %w", err)
	}
	return path, nil
}
