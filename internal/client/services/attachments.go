package services

import (
	"github.com/dmitrijs2005/sealnote/internal/client/models"
	"github.com/dmitrijs2005/sealnote/internal/envelope"
	"github.com/dmitrijs2005/sealnote/internal/filex"
)

// SaveAttachments writes every decrypted file into dir under its sanitized
// name. Files that failed to decrypt, or to be written, are reported in
// SavedFile.Err and do not stop the others.
func SaveAttachments(dir string, files []envelope.FileResult) ([]models.SavedFile, error) {
	if len(files) == 0 {
		return nil, nil
	}
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}

	saved := make([]models.SavedFile, 0, len(files))
	for _, r := range files {
		item := models.SavedFile{Name: r.File.Name, Size: r.File.Size}
		if !r.OK() {
			item.Err = r.Err
			saved = append(saved, item)
			continue
		}

		data, err := r.File.Bytes()
		if err != nil {
			item.Err = err
			saved = append(saved, item)
			continue
		}
		item.Path, item.Err = filex.WriteUnique(abs, r.File.Name, data)
		saved = append(saved, item)
	}
	return saved, nil
}
