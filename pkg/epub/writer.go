package epub

import (
	"archive/zip"
	"fmt"
	"os"

	"github.com/crdjm/epub-accessibility-fixer/pkg/models"
)

// Write serializes the container to outPath, re-encoding only the entries
// the repair run modified. The mimetype entry is written first and stored
// uncompressed, as OCF requires; every other entry keeps its
// original archive order.
func (c *Container) Write(pc *models.ProcessingContext, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	if data, ok := c.bytes("mimetype"); ok {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}

	for _, e := range c.entries {
		if e.name == "mimetype" {
			continue
		}
		data := e.data
		if cf := pc.FindContentByPath(e.name); cf != nil && cf.IsModified() {
			if cf.Doc != nil {
				serialized, err := cf.Doc.Serialize()
				if err != nil {
					return err
				}
				data = serialized
			} else if cf.Data != nil {
				data = cf.Data
			}
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write entry %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", outPath, err)
	}
	return nil
}
