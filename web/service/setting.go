package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/database/model"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/util/common"
	"github.com/testwork/bookadmin/util/random"
	"github.com/testwork/bookadmin/util/reflect_util"
	"github.com/testwork/bookadmin/web/entity"
)

var defaultValueMap = map[string]string{
	"webListen":      "",
	"webPort":        "5000",
	"secret":         random.Seq(32),
	"sessionMaxAge":  "0",
	"pageSize":       "20",
	"timeLocation":   "Local",
	"checkpointCron": "@every 10m",
}

// CronParser accepts five or six field specs and descriptors such as "@every 10m".
var CronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// SettingService reads and writes the key/value settings table, falling back
// to defaults for keys that were never saved.
type SettingService struct{}

func (s *SettingService) GetAllSetting() (*entity.AllSetting, error) {
	db := database.GetDB()
	settings := make([]*model.Setting, 0)
	err := db.Model(model.Setting{}).Not("key = ?", "secret").Find(&settings).Error
	if err != nil {
		return nil, err
	}
	allSetting := &entity.AllSetting{}
	t := reflect.TypeOf(allSetting).Elem()
	v := reflect.ValueOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)

	setSetting := func(key, value string) (err error) {
		defer func() {
			panicErr := recover()
			if panicErr != nil {
				err = errors.New(fmt.Sprint(panicErr))
			}
		}()

		var found bool
		var field reflect.StructField
		for _, f := range fields {
			if f.Tag.Get("json") == key {
				field = f
				found = true
				break
			}
		}
		if !found {
			return nil
		}

		fieldV := v.FieldByName(field.Name)
		switch t := fieldV.Interface().(type) {
		case int:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			fieldV.SetInt(n)
		case string:
			fieldV.SetString(value)
		case bool:
			fieldV.SetBool(value == "true")
		default:
			return common.NewErrorf("unknown field %v type %v", key, t)
		}
		return
	}

	keyMap := map[string]bool{}
	for _, setting := range settings {
		if err := setSetting(setting.Key, setting.Value); err != nil {
			return nil, err
		}
		keyMap[setting.Key] = true
	}
	for key, value := range defaultValueMap {
		if keyMap[key] || key == "secret" {
			continue
		}
		if err := setSetting(key, value); err != nil {
			return nil, err
		}
	}
	return allSetting, nil
}

// UpdateAllSetting validates and saves every field of allSetting.
func (s *SettingService) UpdateAllSetting(allSetting *entity.AllSetting) error {
	if allSetting.WebPort <= 0 || allSetting.WebPort > 65535 {
		return common.NewErrorf("port %d out of range", allSetting.WebPort)
	}
	if allSetting.SessionMaxAge < 0 {
		return common.NewErrorf("session max age %d is negative", allSetting.SessionMaxAge)
	}
	if _, err := time.LoadLocation(allSetting.TimeLocation); err != nil {
		return common.NewError("time location not exist:", allSetting.TimeLocation)
	}
	if _, err := CronParser.Parse(allSetting.CheckpointCron); err != nil {
		return common.NewErrorf("invalid checkpoint schedule %q: %v", allSetting.CheckpointCron, err)
	}
	if allSetting.PageSize <= 0 {
		allSetting.PageSize = 20
	}

	v := reflect.ValueOf(allSetting).Elem()
	t := reflect.TypeOf(allSetting).Elem()
	fields := reflect_util.GetFields(t)
	errs := make([]error, 0)
	for _, field := range fields {
		key := field.Tag.Get("json")
		fieldV := v.FieldByName(field.Name)
		value := fmt.Sprint(fieldV.Interface())
		if err := s.saveSetting(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return common.Combine(errs...)
}

// ResetSettings removes every saved setting except the session secret.
func (s *SettingService) ResetSettings() error {
	db := database.GetDB()
	return db.Where("key <> ?", "secret").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	db := database.GetDB()
	setting := &model.Setting{}
	err := db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	setting, err := s.getSetting(key)
	db := database.GetDB()
	if database.IsNotFound(err) {
		return db.Create(&model.Setting{
			Key:   key,
			Value: value,
		}).Error
	} else if err != nil {
		return err
	}
	setting.Key = key
	setting.Value = value
	return db.Save(setting).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

func (s *SettingService) getInt(key string) (int, error) {
	str, err := s.getString(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(key string, value int) error {
	return s.setString(key, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) SetListen(ip string) error {
	return s.setString("webListen", ip)
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	if port <= 0 || port > 65535 {
		return common.NewErrorf("port %d out of range", port)
	}
	return s.setInt("webPort", port)
}

// GetSessionMaxAge returns the session lifetime in minutes; 0 keeps the
// cookie for the browser session only.
func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

func (s *SettingService) SetSessionMaxAge(minutes int) error {
	if minutes < 0 {
		return common.NewErrorf("session max age %d is negative", minutes)
	}
	return s.setInt("sessionMaxAge", minutes)
}

func (s *SettingService) GetPageSize() (int, error) {
	size, err := s.getInt("pageSize")
	if err != nil {
		return 0, err
	}
	if size <= 0 {
		size = 20
	}
	return size, nil
}

func (s *SettingService) SetPageSize(size int) error {
	return s.setInt("pageSize", size)
}

func (s *SettingService) GetCheckpointCron() (string, error) {
	return s.getString("checkpointCron")
}

// GetSecret returns the session signing secret. BOOKADMIN_SECRET wins; otherwise
// the persisted secret is used, generated and saved on first call.
func (s *SettingService) GetSecret() ([]byte, error) {
	if secret := config.GetSecret(); secret != "" {
		return []byte(secret), nil
	}
	secret, err := s.getString("secret")
	if err != nil {
		return nil, err
	}
	if secret == defaultValueMap["secret"] {
		if err := s.saveSetting("secret", secret); err != nil {
			logger.Warning("save secret failed:", err)
		}
	}
	return []byte(secret), nil
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		logger.Errorf("location <%v> not exist, using default location: %v", l, defaultLocation)
		return time.LoadLocation(defaultLocation)
	}
	return location, nil
}

func (s *SettingService) SetTimeLocation(name string) error {
	if _, err := time.LoadLocation(name); err != nil {
		return err
	}
	return s.setString("timeLocation", name)
}
