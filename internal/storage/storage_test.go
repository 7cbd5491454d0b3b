package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sobatmedia/smm-store/internal"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

var _ = Describe("NewUploader", func() {
	It("falls back to local disk when OSS is not configured", func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		dir := GinkgoT().TempDir()

		uploader, err := NewUploader(internal.StorageConfig{LocalDir: dir, PublicBaseURL: "http://localhost:8080"}, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(uploader).To(BeAssignableToTypeOf(&LocalUploader{}))
	})
})

var _ = Describe("LocalUploader", func() {
	var (
		uploader *LocalUploader
		dir      string
		ctx      context.Context
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		uploader, err = NewLocalUploader(dir, "http://localhost:8080/")
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	It("writes the file and returns its public URL", func() {
		url, err := uploader.Upload(ctx, "proofs/SM-AAAA1111/bukti.jpg", "image/jpeg", strings.NewReader("fake-image"))
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("http://localhost:8080/uploads/proofs/SM-AAAA1111/bukti.jpg"))

		content, err := os.ReadFile(filepath.Join(dir, "proofs", "SM-AAAA1111", "bukti.jpg"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("fake-image"))
	})

	It("keeps traversal sequences inside the upload dir", func() {
		_, err := uploader.Upload(ctx, "../../etc/passwd", "text/plain", strings.NewReader("nope"))
		Expect(err).NotTo(HaveOccurred())

		_, statErr := os.Stat(filepath.Join(dir, "etc", "passwd"))
		Expect(statErr).NotTo(HaveOccurred())
	})
})
