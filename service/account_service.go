package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/pkg/notify"
	"towtruck/storage"
)

const AvatarDir = "drivers"

var (
	avatarExts  = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true}
	avatarMimes = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true}
)

const (
	MsgAvatarImage = "The avatar field must be a file of type: jpeg, jpg, png, gif, webp."
	MsgAvatarSize  = "The avatar field must not be greater than %d kilobytes."
)

// Upload is an incoming avatar file. Size is the size the client declared;
// the content is still limited while reading.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AccountService covers what drivers and admins do to their own accounts.
type AccountService interface {
	Register(ctx context.Context, req models.RegisterDriverRequest) (*models.Driver, error)
	ToggleOnline(ctx context.Context, driverID int64) (bool, error)
	UpdateProfile(ctx context.Context, driverID int64, req models.DriverProfileRequest, avatar *Upload) (*models.Driver, error)
	ChangeDriverPassword(ctx context.Context, driverID int64, req models.PasswordChangeRequest) error
	UpdateAdminProfile(ctx context.Context, adminID int64, req models.AdminProfileRequest) (*models.Admin, error)
	ChangeAdminPassword(ctx context.Context, adminID int64, req models.PasswordChangeRequest) error
}

type accountService struct {
	admins   storage.IAdminStorage
	drivers  storage.IDriverStorage
	areas    storage.IServiceAreaStorage
	files    FileStore
	notifier notify.Notifier
	hasher   hasher
	log      logger.ILogger
	maxBytes int64
}

func NewAccountService(stg storage.IStorage, files FileStore, notifier notify.Notifier, h hasher, log logger.ILogger, maxBytes int64) AccountService {
	return &accountService{
		admins:   stg.Admin(),
		drivers:  stg.Driver(),
		areas:    stg.ServiceArea(),
		files:    files,
		notifier: notifier,
		hasher:   h,
		log:      log,
		maxBytes: maxBytes,
	}
}

func (s *accountService) areaExists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	area, err := s.areas.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return area != nil, nil
}

func (s *accountService) Register(ctx context.Context, req models.RegisterDriverRequest) (*models.Driver, error) {
	email := strings.TrimSpace(req.Email)
	verr := &ValidationError{}
	name := verr.required("name", req.Name)
	phone := verr.required("phone_number", req.PhoneNumber)

	taken, err := s.drivers.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		verr.add("email", MsgEmailTaken)
	}
	if req.Password != req.PasswordConfirmation {
		verr.add("password", MsgPasswordConfirm)
	}
	ok, err := s.areaExists(ctx, req.ServiceAreaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		verr.add("service_area_id", MsgAreaInvalid)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	areaID := req.ServiceAreaID
	driver := &models.Driver{
		Name:          name,
		Email:         email,
		Password:      hash,
		PhoneNumber:   phone,
		ServiceAreaID: &areaID,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		s.log.Error("failed to register driver", logger.Error(err))
		return nil, err
	}
	s.log.Info("driver registered", logger.Int64("driver_id", driver.ID))

	created, err := s.drivers.GetByID(ctx, driver.ID)
	if err == nil && created != nil {
		driver = created
	}
	if err := s.notifier.DriverRegistered(ctx, driver); err != nil {
		s.log.Warning("registration notification failed", logger.Error(err))
	}
	return driver, nil
}

func (s *accountService) ToggleOnline(ctx context.Context, driverID int64) (bool, error) {
	online, err := s.drivers.ToggleOnline(ctx, driverID)
	if err != nil {
		s.log.Error("failed to toggle online status", logger.Error(err), logger.Int64("driver_id", driverID))
		return false, err
	}
	s.log.Debug("driver online status changed", logger.Int64("driver_id", driverID), logger.Bool("online", online))
	return online, nil
}

// readAvatar validates the upload and returns its content together with
// the normalised extension. Nothing is written anywhere.
func (s *accountService) readAvatar(up *Upload) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !avatarExts[ext] {
		return nil, "", fieldError("avatar", MsgAvatarImage)
	}

	tooBig := fieldError("avatar", fmt.Sprintf(MsgAvatarSize, s.maxBytes/1024))
	if up.Size > s.maxBytes {
		return nil, "", tooBig
	}
	data, err := io.ReadAll(io.LimitReader(up.Content, s.maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, "", tooBig
	}

	if !avatarMimes[http.DetectContentType(data)] {
		return nil, "", fieldError("avatar", MsgAvatarImage)
	}
	return data, ext, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, driverID int64, req models.DriverProfileRequest, avatar *Upload) (*models.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}

	verr := &ValidationError{}
	name := verr.required("name", req.Name)
	phone := verr.required("phone_number", req.PhoneNumber)
	ok, err := s.areaExists(ctx, req.ServiceAreaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		verr.add("service_area_id", MsgAreaInvalid)
	}

	var (
		data []byte
		ext  string
	)
	if avatar != nil {
		data, ext, err = s.readAvatar(avatar)
		var fe *ValidationError
		switch {
		case errors.As(err, &fe):
			for k, v := range fe.Fields {
				verr.add(k, v)
			}
		case err != nil:
			return nil, err
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	oldAvatar := driver.Avatar
	newAvatar := oldAvatar
	if data != nil {
		path, err := s.files.Store(AvatarDir, ext, bytes.NewReader(data))
		if err != nil {
			s.log.Error("failed to store avatar", logger.Error(err), logger.Int64("driver_id", driverID))
			return nil, err
		}
		newAvatar = &path
	}

	err = s.drivers.UpdateProfile(ctx, driverID, name, phone, req.ServiceAreaID, newAvatar)
	if err != nil {
		if data != nil {
			if derr := s.files.Delete(*newAvatar); derr != nil {
				s.log.Warning("failed to remove new avatar after failed update", logger.Error(derr), logger.String("path", *newAvatar))
			}
		}
		s.log.Error("failed to update driver profile", logger.Error(err), logger.Int64("driver_id", driverID))
		return nil, err
	}

	if data != nil && oldAvatar != nil && *oldAvatar != "" {
		if err := s.files.Delete(*oldAvatar); err != nil {
			s.log.Warning("failed to delete previous avatar", logger.Error(err), logger.String("path", *oldAvatar))
		}
	}

	return s.drivers.GetByID(ctx, driverID)
}

func (s *accountService) checkNewPassword(req models.PasswordChangeRequest) *ValidationError {
	verr := &ValidationError{}
	if len(req.Password) < 8 {
		verr.add("password", MsgPasswordMin)
	}
	if req.Password != req.PasswordConfirmation {
		verr.add("password", MsgPasswordConfirm)
	}
	return verr
}

func (s *accountService) ChangeDriverPassword(ctx context.Context, driverID int64, req models.PasswordChangeRequest) error {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if driver == nil {
		return ErrNotFound
	}

	verr := s.checkNewPassword(req)
	if err := verr.orNil(); err != nil {
		return err
	}
	if !s.hasher.Check(driver.Password, req.CurrentPassword) {
		return fieldError("current_password", MsgCurrentPassword)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}
	if err := s.drivers.UpdatePassword(ctx, driverID, hash); err != nil {
		s.log.Error("failed to change driver password", logger.Error(err), logger.Int64("driver_id", driverID))
		return err
	}
	s.log.Info("driver password changed", logger.Int64("driver_id", driverID))
	return nil
}

func (s *accountService) UpdateAdminProfile(ctx context.Context, adminID int64, req models.AdminProfileRequest) (*models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}

	email := strings.TrimSpace(req.Email)
	verr := &ValidationError{}
	name := verr.required("name", req.Name)
	taken, err := s.admins.EmailTaken(ctx, email, adminID)
	if err != nil {
		return nil, err
	}
	if taken {
		verr.add("email", MsgEmailTaken)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if err := s.admins.UpdateProfile(ctx, adminID, name, email); err != nil {
		s.log.Error("failed to update admin profile", logger.Error(err), logger.Int64("admin_id", adminID))
		return nil, err
	}
	admin.Name, admin.Email = name, email
	return admin, nil
}

func (s *accountService) ChangeAdminPassword(ctx context.Context, adminID int64, req models.PasswordChangeRequest) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}

	verr := s.checkNewPassword(req)
	if err := verr.orNil(); err != nil {
		return err
	}
	if !s.hasher.Check(admin.Password, req.CurrentPassword) {
		return fieldError("current_password", MsgCurrentPassword)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}
	if err := s.admins.UpdatePassword(ctx, adminID, hash); err != nil {
		s.log.Error("failed to change admin password", logger.Error(err), logger.Int64("admin_id", adminID))
		return err
	}
	s.log.Info("admin password changed", logger.Int64("admin_id", adminID))
	return nil
}
