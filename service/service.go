package service

import (
	"io"

	"golang.org/x/crypto/bcrypt"

	"towtruck/pkg/logger"
	"towtruck/pkg/notify"
	"towtruck/storage"
)

// FileStore is the blob storage used for avatars.
type FileStore interface {
	Store(dir, ext string, r io.Reader) (string, error)
	Delete(path string) error
	URL(path string) string
}

type Options struct {
	AvatarMaxBytes int64
	BcryptCost     int
}

type IServiceManager interface {
	Auth() AuthService
	Directory() DirectoryService
	Drivers() DriverService
	ServiceAreas() ServiceAreaService
	Account() AccountService
	Files() FileStore
}

type service struct {
	authService        AuthService
	directoryService   DirectoryService
	driverService      DriverService
	serviceAreaService ServiceAreaService
	accountService     AccountService
	files              FileStore
}

func New(stg storage.IStorage, files FileStore, notifier notify.Notifier, log logger.ILogger, opts Options) IServiceManager {
	if opts.AvatarMaxBytes <= 0 {
		opts.AvatarMaxBytes = 2048 * 1024
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	h := hasher{cost: opts.BcryptCost}
	return &service{
		authService:        NewAuthService(stg, h, log),
		directoryService:   NewDirectoryService(stg, log),
		driverService:      NewDriverService(stg, files, h, log),
		serviceAreaService: NewServiceAreaService(stg, log),
		accountService:     NewAccountService(stg, files, notifier, h, log, opts.AvatarMaxBytes),
		files:              files,
	}
}

func (s *service) Auth() AuthService                { return s.authService }
func (s *service) Directory() DirectoryService      { return s.directoryService }
func (s *service) Drivers() DriverService           { return s.driverService }
func (s *service) ServiceAreas() ServiceAreaService { return s.serviceAreaService }
func (s *service) Account() AccountService          { return s.accountService }
func (s *service) Files() FileStore                 { return s.files }

type hasher struct {
	cost int
}

func (h hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h hasher) Check(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
