package store

import (
	"errors"
	"time"

	"event_access/model"

	"gorm.io/gorm"
)

var ErrDeviceNotFound = errors.New("device not found")

// DeviceStore quản lý registry thiết bị quét, luôn scoped theo organization.
type DeviceStore struct {
	db *gorm.DB
}

func NewDeviceStore(db *gorm.DB) *DeviceStore {
	return &DeviceStore{db: db}
}

func (s *DeviceStore) ListByOrganization(orgId uint) ([]model.Device, error) {
	var devices []model.Device
	err := s.db.Where("organization_id = ?", orgId).
		Order("created_at desc").Find(&devices).Error
	return devices, err
}

func (s *DeviceStore) Create(device *model.Device) error {
	return s.db.Create(device).Error
}

// Update chỉ chạm row thuộc đúng organization — org guard nằm trong WHERE,
// không kiểm tra rời rạc phía caller.
func (s *DeviceStore) Update(orgId uint, deviceId string, updates map[string]interface{}) error {
	res := s.db.Model(&model.Device{}).
		Where("device_id = ? AND organization_id = ?", deviceId, orgId).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (s *DeviceStore) Delete(orgId uint, deviceId string) error {
	res := s.db.Where("device_id = ? AND organization_id = ?", deviceId, orgId).
		Delete(&model.Device{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func (s *DeviceStore) FindByDeviceId(deviceId string) (*model.Device, error) {
	var device model.Device
	err := s.db.Where("device_id = ?", deviceId).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (s *DeviceStore) FindByAlias(alias string) (*model.Device, error) {
	var device model.Device
	err := s.db.Where("alias = ?", alias).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (s *DeviceStore) TouchLastActive(id uint) error {
	return s.db.Model(&model.Device{}).Where("id = ?", id).
		UpdateColumn("last_active_at", time.Now()).Error
}
