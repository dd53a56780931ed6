package artifact

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"pds3proc/internal/models"
)

// WriteMetadata writes one key,value row per header entry
func WriteMetadata(w io.Writer, hdr *models.Header) error {
	cw := csv.NewWriter(w)
	var err error
	hdr.Each(func(key, value string) {
		if err == nil {
			err = cw.Write([]string{key, value})
		}
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// SaveMetadata writes the header side-record to path
func SaveMetadata(path string, hdr *models.Header) error {
	return writeFile(path, func(w io.Writer) error { return WriteMetadata(w, hdr) })
}

// SaveHistogram writes level,count rows
func SaveHistogram(path string, counts []float64) error {
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"level", "count"}); err != nil {
			return err
		}
		for level, c := range counts {
			row := []string{strconv.Itoa(level), strconv.FormatFloat(c, 'f', -1, 64)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := fn(file); err != nil {
		return err
	}
	return file.Close()
}
