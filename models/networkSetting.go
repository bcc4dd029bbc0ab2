package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm/clause"
)

type NetworkSetting struct {
	ID          int        `gorm:"primary_key" json:"id"`
	IPAddress   string     `gorm:"size:15;not null;uniqueIndex" json:"ip_address"`
	SubnetMask  string     `gorm:"size:15" json:"subnet_mask"`
	Gateway     string     `gorm:"size:15" json:"gateway"`
	DNSServers  string     `gorm:"size:255" json:"dns_servers"`
	EquipmentId *int       `gorm:"index" json:"equipment_id"`
	Equipment   *Equipment `gorm:"foreignKey:EquipmentId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewNetworkSetting struct {
	IPAddress  string `json:"ip_address"`
	SubnetMask string `json:"subnet_mask"`
	Gateway    string `json:"gateway"`
	// DNSServers is a comma separated list of addresses.
	DNSServers  string `json:"dns_servers"`
	EquipmentId *int   `json:"equipment_id"`
}

// ProbeResult tells whether the address answered on the probe port.
type ProbeResult struct {
	IPAddress string `json:"ip_address"`
	Port      int    `json:"port"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

func (n NetworkSetting) GetId() int { return n.ID }

func (input *NewNetworkSetting) validate() error {
	input.IPAddress = strings.TrimSpace(input.IPAddress)
	input.SubnetMask = strings.TrimSpace(input.SubnetMask)
	input.Gateway = strings.TrimSpace(input.Gateway)

	if ok, message := utils.ValidateIPv4(input.IPAddress, true); !ok {
		return utils.NewValidationError("ip_address", message)
	}
	if ok, message := utils.ValidateIPv4(input.SubnetMask, false); !ok {
		return utils.NewValidationError("subnet_mask", message)
	}
	if ok, message := utils.ValidateIPv4(input.Gateway, false); !ok {
		return utils.NewValidationError("gateway", message)
	}
	if ok, message := utils.ValidateIPv4List(input.DNSServers); !ok {
		return utils.NewValidationError("dns_servers", message)
	}
	input.DNSServers = normalizeAddressList(input.DNSServers)
	if err := utils.CheckFields(utils.FieldRule{Field: "dns_servers", Value: input.DNSServers, MaxLen: 255}); err != nil {
		return err
	}
	input.EquipmentId = OptionRef(input.EquipmentId)
	return nil
}

func normalizeAddressList(value string) string {
	parts := strings.Split(value, ",")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func CreateNetworkSetting(ctx context.Context, input *NewNetworkSetting) (*NetworkSetting, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[NetworkSetting](ctx, "ip_address", input.IPAddress, 0); err != nil {
		return nil, storeError(ctx, "network setting", "CreateNetworkSetting", err)
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "network setting", "CreateNetworkSetting", tx.Error)
	}
	if err := utils.MassValidateResourceIds(tx, []utils.ValidationRule{
		{Model: &Equipment{}, Entity: "equipment", Id: input.EquipmentId},
	}); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "network setting", "CreateNetworkSetting", err)
	}
	setting := NetworkSetting{
		IPAddress:   input.IPAddress,
		SubnetMask:  input.SubnetMask,
		Gateway:     input.Gateway,
		DNSServers:  input.DNSServers,
		EquipmentId: input.EquipmentId,
	}
	if err := tx.Omit(clause.Associations).Create(&setting).Error; err != nil {
		tx.Rollback()
		return nil, networkSettingError(ctx, "CreateNetworkSetting", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "network setting", "CreateNetworkSetting", err)
	}
	publishSaved("network setting", setting.ID)
	return &setting, nil
}

func UpdateNetworkSetting(ctx context.Context, id int, input *NewNetworkSetting) (*NetworkSetting, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[NetworkSetting](ctx, "ip_address", input.IPAddress, id); err != nil {
		return nil, storeError(ctx, "network setting", "UpdateNetworkSetting", err)
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storeError(ctx, "network setting", "UpdateNetworkSetting", tx.Error)
	}
	setting, err := loadForChange[NetworkSetting](tx, "network setting", id)
	if err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "network setting", "UpdateNetworkSetting", err)
	}
	if err := utils.MassValidateResourceIds(tx, []utils.ValidationRule{
		{Model: &Equipment{}, Entity: "equipment", Id: input.EquipmentId},
	}); err != nil {
		tx.Rollback()
		return nil, storeError(ctx, "network setting", "UpdateNetworkSetting", err)
	}
	err = tx.Model(setting).Updates(map[string]interface{}{
		"ip_address":   input.IPAddress,
		"subnet_mask":  input.SubnetMask,
		"gateway":      input.Gateway,
		"dns_servers":  input.DNSServers,
		"equipment_id": input.EquipmentId,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, networkSettingError(ctx, "UpdateNetworkSetting", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, storeError(ctx, "network setting", "UpdateNetworkSetting", err)
	}

	setting.IPAddress = input.IPAddress
	setting.SubnetMask = input.SubnetMask
	setting.Gateway = input.Gateway
	setting.DNSServers = input.DNSServers
	setting.EquipmentId = input.EquipmentId
	publishSaved("network setting", id)
	return setting, nil
}

// networkSettingError reports a unique index violation as the ip address being taken.
func networkSettingError(ctx context.Context, funcName string, err error) error {
	if isDuplicateKey(err) {
		return &utils.UniqueError{Field: "ip_address"}
	}
	return storeError(ctx, "network setting", funcName, err)
}

func DeleteNetworkSetting(ctx context.Context, id int) (*NetworkSetting, error) {
	return deleteRecord[NetworkSetting](ctx, "network setting", id, nil, nil)
}

func GetNetworkSetting(ctx context.Context, id int) (*NetworkSetting, error) {
	return GetResource[NetworkSetting](ctx, "network setting", id)
}

func GetNetworkSettings(ctx context.Context, search *string, equipmentId *int) ([]*NetworkSetting, error) {
	db := config.GetDB()
	var results []*NetworkSetting

	dbCtx := db.WithContext(ctx)
	if search != nil && strings.TrimSpace(*search) != "" {
		dbCtx = dbCtx.Where("ip_address LIKE ?", "%"+strings.TrimSpace(*search)+"%")
	}
	if id := OptionRef(equipmentId); id != nil {
		dbCtx = dbCtx.Where("equipment_id = ?", *id)
	}
	if err := dbCtx.Order("ip_address").Find(&results).Error; err != nil {
		return nil, storeError(ctx, "network setting", "GetNetworkSettings", err)
	}
	return results, nil
}

// ProbeNetworkSetting tries a TCP connection to the setting's address on the configured probe port.
// An unreachable address is a result, not an error.
func ProbeNetworkSetting(ctx context.Context, id int) (*ProbeResult, error) {
	setting, err := GetResource[NetworkSetting](ctx, "network setting", id)
	if err != nil {
		return nil, err
	}
	port := config.ProbePort()
	started := time.Now()
	result := &ProbeResult{IPAddress: setting.IPAddress, Port: port}
	if err := utils.ProbeAddress(ctx, setting.IPAddress, port, config.ProbeTimeout()); err != nil {
		result.Error = err.Error()
	} else {
		result.Reachable = true
	}
	result.ElapsedMs = time.Since(started).Milliseconds()
	return result, nil
}
