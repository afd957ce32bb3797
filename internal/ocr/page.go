package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// minRasterWidth is roughly an ID card scanned at 300 DPI.
	minRasterWidth = 1000
	maxUpscale     = 4.0
)

// Page is the first page of an upload, either a raster image or a single-page PDF.
type Page struct {
	Path     string
	MIMEType string
	Data     []byte
}

func (p *Page) IsPDF() bool { return p.MIMEType == "application/pdf" }

// FirstPage loads the first page of the file at path. PDFs are split into
// workDir and the first page returned; images are returned as-is after
// checking that they decode.
func FirstPage(path, workDir string) (*Page, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return firstPDFPage(path, workDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable("failed to read %s: %v", filepath.Base(path), err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, unreadable("failed to decode image %s: %v", filepath.Base(path), err)
	}
	return &Page{Path: path, MIMEType: "image/" + format, Data: data}, nil
}

func pdfConfig() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// firstPDFPage rewrites the PDF with relaxed validation, which repairs many
// scanner outputs, then splits it and keeps page one.
func firstPDFPage(path, workDir string) (*Page, error) {
	optimized := filepath.Join(workDir, "document.pdf")
	if err := api.OptimizeFile(path, optimized, pdfConfig()); err != nil {
		return nil, unreadable("failed to read PDF %s: %v", filepath.Base(path), err)
	}

	pageCount, err := api.PageCountFile(optimized)
	if err != nil {
		return nil, unreadable("failed to count pages of %s: %v", filepath.Base(path), err)
	}
	if pageCount == 0 {
		return nil, unreadable("PDF %s has no pages", filepath.Base(path))
	}

	splitDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(splitDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create split dir: %w", err)
	}
	if err := api.SplitFile(optimized, splitDir, 1, pdfConfig()); err != nil {
		return nil, unreadable("failed to split PDF %s: %v", filepath.Base(path), err)
	}

	pagePath := filepath.Join(splitDir, "document_1.pdf")
	data, err := os.ReadFile(pagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read split page %s: %w", pagePath, err)
	}
	return &Page{Path: pagePath, MIMEType: "application/pdf", Data: data}, nil
}

// errNoPageImage means a PDF page carries no image to OCR. The page is valid
// but has nothing legible for Tesseract.
var errNoPageImage = errors.New("no embedded image on page")

// Rasterize returns a grayscale PNG of the page suitable for Tesseract. For
// PDF pages the largest embedded image is used, which for a scan is the page
// itself; a page without one yields errNoPageImage.
func Rasterize(page *Page, workDir string) ([]byte, error) {
	var img image.Image
	var err error
	if page.IsPDF() {
		img, err = largestEmbeddedImage(page.Path, workDir)
	} else {
		img, _, err = image.Decode(bytes.NewReader(page.Data))
		if err != nil {
			err = unreadable("failed to decode image: %v", err)
		}
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Preprocess(img)); err != nil {
		return nil, fmt.Errorf("failed to encode raster: %w", err)
	}
	return buf.Bytes(), nil
}

func largestEmbeddedImage(pdfPath, workDir string) (image.Image, error) {
	imageDir := filepath.Join(workDir, "images")
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image dir: %w", err)
	}
	if err := api.ExtractImagesFile(pdfPath, imageDir, nil, pdfConfig()); err != nil {
		return nil, fmt.Errorf("%w: extracting images from %s: %v", errNoPageImage, filepath.Base(pdfPath), err)
	}

	entries, err := os.ReadDir(imageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list extracted images: %w", err)
	}

	type candidate struct {
		path string
		size int64
	}
	var candidates []candidate
	for _, e := range entries {
		if info, err := e.Info(); err == nil && !e.IsDir() {
			candidates = append(candidates, candidate{filepath.Join(imageDir, e.Name()), info.Size()})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].size > candidates[j].size })

	for _, c := range candidates {
		f, err := os.Open(c.path)
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errNoPageImage, filepath.Base(pdfPath))
}

// Preprocess converts img to grayscale and upscales narrow scans so text is
// at least ~300 DPI, never by more than maxUpscale.
func Preprocess(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if w > 0 && w < minRasterWidth {
		scale = float64(minRasterWidth) / float64(w)
		if scale > maxUpscale {
			scale = maxUpscale
		}
	}

	tw, th := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	gray := image.NewGray(image.Rect(0, 0, tw, th))
	if scale == 1.0 {
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(gray, gray.Bounds(), img, b, draw.Src, nil)
	}
	return gray
}
