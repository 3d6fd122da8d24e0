package wallet

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"hackathon-management-backend/internal/services"

	"github.com/sirupsen/logrus"
)

// Signer produces the detached PKCS#7 signature over manifest.json using the
// openssl binary. The signing certificate and key are extracted from the
// configured .p12 bundle on first use.
type Signer struct {
	p12Path     string
	p12Password string
	wwdrPath    string

	workDir  string
	certPath string
	keyPath  string
	wwdrPEM  string
}

func NewSigner(p12Path, p12Password, wwdrPath string) *Signer {
	return &Signer{p12Path: p12Path, p12Password: p12Password, wwdrPath: wwdrPath}
}

func (s *Signer) prepare() error {
	if s.workDir != "" {
		return nil
	}

	dir, err := os.MkdirTemp("", "passkit-certs-")
	if err != nil {
		return err
	}
	s.workDir = dir
	s.certPath = filepath.Join(dir, "cert.pem")
	s.keyPath = filepath.Join(dir, "key.pem")

	if err := s.extractFromP12("-clcerts", "-nokeys", s.certPath); err != nil {
		return services.NewWorkflowError("could not extract signing certificate", services.ErrCertExtraction, err)
	}
	if err := s.extractFromP12("-nocerts", "-nodes", s.keyPath); err != nil {
		return services.NewWorkflowError("could not extract signing key", services.ErrCertExtraction, err)
	}

	if err := s.prepareWWDR(); err != nil {
		return err
	}
	return nil
}

// extractFromP12 runs openssl pkcs12. Bundles exported by older macOS
// keychains use RC2, which openssl 3.x only reads with -legacy, so a failed
// run is retried once with that flag.
func (s *Signer) extractFromP12(selector, keyOpt, out string) error {
	args := []string{
		"pkcs12", "-in", s.p12Path, selector, keyOpt,
		"-out", out, "-passin", "pass:" + s.p12Password,
	}
	if err := runOpenssl(args...); err != nil {
		logrus.WithError(err).Debug("openssl pkcs12 failed, retrying with -legacy")
		return runOpenssl(append(args, "-legacy")...)
	}
	return nil
}

// prepareWWDR makes the Apple WWDR intermediate available as PEM. Apple ships
// it as DER; a file that already parses as PEM is used as-is.
func (s *Signer) prepareWWDR() error {
	data, err := os.ReadFile(s.wwdrPath)
	if err != nil {
		return services.NewWorkflowError("could not read WWDR certificate", services.ErrCertExtraction, err)
	}

	if bytes.Contains(data, []byte("-----BEGIN CERTIFICATE-----")) {
		s.wwdrPEM = s.wwdrPath
		return nil
	}

	s.wwdrPEM = filepath.Join(s.workDir, "wwdr.pem")
	if err := runOpenssl("x509", "-inform", "DER", "-in", s.wwdrPath, "-out", s.wwdrPEM); err != nil {
		return services.NewWorkflowError("could not convert WWDR certificate", services.ErrCertExtraction, err)
	}
	return nil
}

// Sign returns the detached DER signature over the manifest bytes.
func (s *Signer) Sign(manifest []byte) ([]byte, error) {
	if err := s.prepare(); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(s.workDir, "manifest.json")
	if err := os.WriteFile(manifestPath, manifest, 0600); err != nil {
		return nil, err
	}
	signaturePath := filepath.Join(s.workDir, "signature")

	err := runOpenssl(
		"smime", "-binary", "-sign",
		"-certfile", s.wwdrPEM,
		"-signer", s.certPath,
		"-inkey", s.keyPath,
		"-in", manifestPath,
		"-out", signaturePath,
		"-outform", "DER",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sign manifest: %w", err)
	}
	return os.ReadFile(signaturePath)
}

// Close removes the extracted key material.
func (s *Signer) Close() {
	if s.workDir != "" {
		os.RemoveAll(s.workDir)
		s.workDir = ""
	}
}

func runOpenssl(args ...string) error {
	cmd := exec.Command("openssl", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("openssl %s: %s", args[0], detail)
		}
		return fmt.Errorf("openssl %s: %w", args[0], err)
	}
	return nil
}
