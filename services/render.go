package services

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/HSouheill/menuqr_backend/models"
)

// ErrArtifactMissing is returned when a download is requested before the
// artifact was generated.
var ErrArtifactMissing = errors.New("artifact not generated")

const defaultWelcomeText = "Welcome to our restaurant. Enjoy the best dishes!"

// RenderService turns a menu plus an optional sponsored ad into a PDF and a
// QR code pointing at its download URL. Artifacts are keyed by menu id and
// overwritten on regeneration; concurrent renders of the same menu are
// last-writer-wins but never leave a torn file (temp write + rename).
type RenderService struct {
	dir     string
	baseURL string
	client  *http.Client
}

func NewRenderService(dir, baseURL string) *RenderService {
	return &RenderService{
		dir:     dir,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *RenderService) PDFPath(menuID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("menu_%s.pdf", menuID))
}

func (s *RenderService) QRPath(menuID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("qr_%s.png", menuID))
}

func (s *RenderService) PDFURL(menuID string) string {
	return fmt.Sprintf("%s/api/menus/%s/download-pdf", s.baseURL, menuID)
}

func (s *RenderService) QRURL(menuID string) string {
	return fmt.Sprintf("%s/api/menus/%s/download-qr", s.baseURL, menuID)
}

// ArtifactFile resolves a previously generated artifact path, or
// ErrArtifactMissing if it was never rendered.
func (s *RenderService) ArtifactFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrArtifactMissing
		}
		return "", err
	}
	return path, nil
}

// GenerateMenuPDF writes the menu PDF: a title page, the sponsored-ad page
// when an ad was selected, then one page per category.
func (s *RenderService) GenerateMenuPDF(menu *models.Menu, ad *models.Ad) error {
	welcome := menu.WelcomeText
	if welcome == "" {
		welcome = defaultWelcomeText
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pageWidth, pageHeight := pdf.GetPageSize()
	const padding = 100.0

	// Title page: menu name centered, welcome line below it
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 36)
	pdf.Text((pageWidth-pdf.GetStringWidth(menu.Name))/2, pageHeight/2, menu.Name)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text((pageWidth-pdf.GetStringWidth(welcome))/2, pageHeight/2+40, welcome)

	if ad != nil {
		s.renderAdPage(pdf, ad, pageWidth, padding)
	}

	for _, category := range menu.Categories {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 30)
		pdf.Text((pageWidth-pdf.GetStringWidth(category.Name))/2, padding, category.Name)

		y := padding + 50
		pdf.SetFont("Helvetica", "", 16)
		for _, dish := range category.Dishes {
			if y > pageHeight-padding {
				pdf.AddPage()
				y = padding + 50
			}
			price := fmt.Sprintf("$%.2f", dish.Price)
			pdf.Text(padding, y, dish.Name)
			pdf.Text(pageWidth-padding-pdf.GetStringWidth(price), y, price)
			y += 25
			pdf.SetDrawColor(128, 128, 128)
			pdf.Line(padding, y, pageWidth-padding, y)
			y += 20
		}
	}

	return s.writeAtomic(s.PDFPath(menu.ID), func(w io.Writer) error {
		return pdf.Output(w)
	})
}

func (s *RenderService) renderAdPage(pdf *fpdf.Fpdf, ad *models.Ad, pageWidth, padding float64) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	header := "Sponsored Ad: " + ad.AdName
	pdf.Text((pageWidth-pdf.GetStringWidth(header))/2, padding, header)

	y := padding + 40
	if ad.AdImageURL != "" {
		if img, kind, err := s.fetchImage(ad.AdImageURL); err == nil {
			name := "ad_" + ad.ID.Hex()
			pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: kind}, bytes.NewReader(img))
			imgWidth, imgHeight := 200.0, 150.0
			pdf.ImageOptions(name, (pageWidth-imgWidth)/2, y, imgWidth, imgHeight, false, fpdf.ImageOptions{ImageType: kind}, 0, "")
			y += imgHeight + 20
		} else {
			pdf.SetFont("Helvetica", "", 12)
			pdf.Text((pageWidth-pdf.GetStringWidth("Image not available"))/2, y, "Image not available")
			y += 20
		}
	}

	pdf.SetFont("Helvetica", "", 12)
	for key, value := range ad.Metadata {
		line := key + ": " + value
		pdf.Text((pageWidth-pdf.GetStringWidth(line))/2, y, line)
		y += 20
	}
}

// fetchImage downloads the ad image and sniffs its type for fpdf.
func (s *RenderService) fetchImage(url string) ([]byte, string, error) {
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image fetch returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", err
	}
	kind := "JPG"
	if len(data) > 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")) {
		kind = "PNG"
	}
	return data, kind, nil
}

// GenerateQRCode writes a 300x300 PNG QR code linking to url.
func (s *RenderService) GenerateQRCode(url, menuID string) error {
	qrCode, err := qr.Encode(url, qr.M, qr.Auto)
	if err != nil {
		return fmt.Errorf("encoding QR code: %w", err)
	}
	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return fmt.Errorf("scaling QR code: %w", err)
	}
	return s.writeAtomic(s.QRPath(menuID), func(w io.Writer) error {
		return png.Encode(w, qrCode)
	})
}

// writeAtomic writes through a uniquely named temp file and renames into
// place, so a concurrent reader never sees a partial artifact.
func (s *RenderService) writeAtomic(path string, write func(io.Writer) error) error {
	tmp := path + "." + uuid.New().String() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
