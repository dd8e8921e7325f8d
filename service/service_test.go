package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/storage/memory"
)

type memFiles struct {
	mu    sync.Mutex
	seq   int
	blobs map[string][]byte
}

func newMemFiles() *memFiles { return &memFiles{blobs: map[string][]byte{}} }

func (f *memFiles) Store(dir, ext string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	path := fmt.Sprintf("%s/%d%s", dir, f.seq, ext)
	f.blobs[path] = data
	return path, nil
}

func (f *memFiles) Delete(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, path)
	return nil
}

func (f *memFiles) URL(path string) string { return "/storage/" + path }

func (f *memFiles) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[path]
	return ok
}

type recordingNotifier struct {
	drivers []*models.Driver
}

func (n *recordingNotifier) DriverRegistered(_ context.Context, d *models.Driver) error {
	n.drivers = append(n.drivers, d)
	return nil
}

type fixture struct {
	stg      *memory.Store
	files    *memFiles
	notifier *recordingNotifier
	svc      IServiceManager
	admin    *models.Admin
	areas    []*models.ServiceArea
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		stg:      memory.New(),
		files:    newMemFiles(),
		notifier: &recordingNotifier{},
	}
	f.svc = New(f.stg, f.files, f.notifier, logger.NewNop(), Options{
		AvatarMaxBytes: 1024,
		BcryptCost:     bcrypt.MinCost,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	f.admin = &models.Admin{Name: "Admin", Email: "admin@towtruck.com", Password: string(hash)}
	if err := f.stg.Admin().Create(ctx, f.admin); err != nil {
		t.Fatal(err)
	}

	for i, name := range []string{"Port of Spain", "San Fernando", "Arima"} {
		a, err := f.svc.ServiceAreas().Create(ctx, models.ServiceAreaRequest{Name: name, SortOrder: &i})
		if err != nil {
			t.Fatal(err)
		}
		f.areas = append(f.areas, a)
	}
	return f
}

func (f *fixture) register(t *testing.T, name, email string) *models.Driver {
	t.Helper()
	d, err := f.svc.Account().Register(context.Background(), models.RegisterDriverRequest{
		Name:                 name,
		Email:                email,
		Password:             "secret123",
		PasswordConfirmation: "secret123",
		PhoneNumber:          "868-555-0100",
		ServiceAreaID:        f.areas[0].ID,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return d
}

func (f *fixture) approve(t *testing.T, id int64) {
	t.Helper()
	if _, err := f.svc.Drivers().Approve(context.Background(), f.admin.ID, id); err != nil {
		t.Fatalf("approve %d: %v", id, err)
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	return verr.Fields
}

// png is the smallest header http.DetectContentType recognises as image/png.
var png = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)
