// Package wallet builds Apple Wallet event tickets (.pkpass) and plain QR
// badges for registered people. The QR payload on both is the person's email,
// which the check-in desk scans.
package wallet

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hackathon-management-backend/internal/config"
	"hackathon-management-backend/internal/models"
	"hackathon-management-backend/internal/utils"

	"github.com/sirupsen/logrus"
)

const qrPixelSize = 512

type Generator struct {
	cfg           *config.PasskitConfig
	eventStartsAt time.Time
	signer        *Signer
}

func NewGenerator(cfg *config.PasskitConfig, eventStartsAt time.Time) *Generator {
	return &Generator{
		cfg:           cfg,
		eventStartsAt: eventStartsAt,
		signer:        NewSigner(cfg.P12Path, cfg.P12Password, cfg.WWDRPath),
	}
}

// Artifacts is the rendered output for one person.
type Artifacts struct {
	PassBytes []byte
	QRBytes   []byte
}

// Generate renders the QR badge and, when sign is true, the signed .pkpass
// archive. With sign false the pass is skipped entirely and only the QR is
// produced, so a machine without the certificates can still run exports.
func (g *Generator) Generate(person *models.Person, sign bool) (*Artifacts, error) {
	qr, err := utils.QRCodePNG(person.Email, qrPixelSize)
	if err != nil {
		return nil, err
	}
	artifacts := &Artifacts{QRBytes: qr}

	if !sign {
		return artifacts, nil
	}

	passJSON, err := g.passJSON(person)
	if err != nil {
		return nil, err
	}

	images, err := g.buildImages()
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{"pass.json": passJSON}
	for name, data := range images {
		files[name] = data
	}

	manifest, err := buildManifest(files)
	if err != nil {
		return nil, err
	}
	files["manifest.json"] = manifest

	signature, err := g.signer.Sign(manifest)
	if err != nil {
		return nil, err
	}
	files["signature"] = signature

	archive, err := buildArchive(files)
	if err != nil {
		return nil, err
	}
	artifacts.PassBytes = archive
	return artifacts, nil
}

// Save writes the artifacts under the configured output directories using a
// filesystem-safe name derived from the email. It returns the written paths.
func (g *Generator) Save(person *models.Person, artifacts *Artifacts) (passPath, qrPath string, err error) {
	safe := utils.SafeFilename(person.Email)

	if err := os.MkdirAll(g.cfg.QRDir, 0755); err != nil {
		return "", "", err
	}
	qrPath = filepath.Join(g.cfg.QRDir, safe+".qr.png")
	if err := os.WriteFile(qrPath, artifacts.QRBytes, 0644); err != nil {
		return "", "", err
	}

	if len(artifacts.PassBytes) > 0 {
		if err := os.MkdirAll(g.cfg.PassDir, 0755); err != nil {
			return "", "", err
		}
		passPath = filepath.Join(g.cfg.PassDir, safe+".pkpass")
		if err := os.WriteFile(passPath, artifacts.PassBytes, 0644); err != nil {
			return "", "", err
		}
	}

	logrus.WithFields(logrus.Fields{"email": person.Email, "pkpass": passPath != ""}).
		Info("Wallet artifacts written")
	return passPath, qrPath, nil
}

// Close releases the signer's extracted key material.
func (g *Generator) Close() { g.signer.Close() }

type passField struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// passJSON renders pass.json. Field values are written with placeholders and
// substituted per person, so layout and data stay separate.
func (g *Generator) passJSON(person *models.Person) ([]byte, error) {
	sub := g.substituter(person)

	ticket := map[string][]passField{
		"primaryFields": {
			{Key: "name", Label: "NAME", Value: sub.Replace("{name}")},
		},
		"secondaryFields": {
			{Key: "role", Label: "ROLE", Value: sub.Replace("{role}")},
			{Key: "date", Label: "STARTS", Value: sub.Replace("{date} {time}")},
		},
		"backFields": {
			{Key: "email", Label: "Email", Value: sub.Replace("{email}")},
			{Key: "when", Label: "Event date", Value: sub.Replace("{full_date}")},
			{Key: "event", Label: "Event", Value: g.cfg.EventName},
		},
	}

	pass := map[string]any{
		"formatVersion":      1,
		"passTypeIdentifier": g.cfg.PassTypeID,
		"teamIdentifier":     g.cfg.TeamID,
		"organizationName":   g.cfg.OrgName,
		"serialNumber":       person.ID.String(),
		"description":        g.cfg.Description,
		"foregroundColor":    g.cfg.ForegroundColor,
		"backgroundColor":    g.cfg.BackgroundColor,
		"labelColor":         g.cfg.LabelColor,
		"barcodes": []map[string]string{{
			"message":         person.Email,
			"format":          "PKBarcodeFormatQR",
			"messageEncoding": "iso-8859-1",
		}},
		"eventTicket": ticket,
	}
	return json.Marshal(pass)
}

func (g *Generator) substituter(person *models.Person) *strings.Replacer {
	return strings.NewReplacer(
		"{name}", person.Name,
		"{email}", person.Email,
		"{role}", roleLabel(person.Role),
		"{date}", g.eventStartsAt.Format("Jan 2"),
		"{time}", g.eventStartsAt.Format("15:04"),
		"{full_date}", g.eventStartsAt.Format("Monday, January 2, 2006"),
	)
}

func roleLabel(role string) string {
	switch role {
	case models.RoleMentor:
		return "Mentor"
	case models.RoleSponsor:
		return "Sponsor"
	default:
		return "Hacker"
	}
}

// buildManifest maps every archive file to its SHA-1 hex digest, as the
// wallet format requires.
func buildManifest(files map[string][]byte) ([]byte, error) {
	manifest := make(map[string]string, len(files))
	for name, data := range files {
		sum := sha1.Sum(data)
		manifest[name] = hex.EncodeToString(sum[:])
	}
	return json.Marshal(manifest)
}

func buildArchive(files map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
