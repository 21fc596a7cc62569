package entity

import "time"

// DownloadedFile is one cause list saved during a batch.
type DownloadedFile struct {
	Judge    string `json:"judge"`
	FilePath string `json:"filepath"`
	FileName string `json:"filename"`
}

// StoredFile describes a file found in the output directory.
type StoredFile struct {
	ID        string    // sha1 of Name, keys the download counter
	Name      string    // File name inside the output directory
	Size      int64     // Size in bytes
	ModTime   time.Time // Last write
	MIMEType  string
	Downloads int64 // How many times the file was fetched through the UI
}

func (f *StoredFile) SizeKB() float64 {
	return float64(f.Size) / 1024
}
