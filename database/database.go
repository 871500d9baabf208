/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"fmt"
	"net/url"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverMysql    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultDBName       = "btp-abi.db"
	DefaultMaxOpenConns = 8
)

type Config struct {
	Driver   string `json:"driver"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Host     string `json:"host,omitempty"`
	Port     uint   `json:"port,omitempty"`
	DBName   string `json:"dbname"`
	// MaxOpenConns zero for DefaultMaxOpenConns
	MaxOpenConns int `json:"max_open_conns,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Driver: DriverSQLite,
		DBName: DefaultDBName,
	}
}

var zeroDefaultDatetimePrecision = 0

// Dialector returns the gorm dialector of the configured driver.
func (c Config) Dialector() (gorm.Dialector, error) {
	if len(c.DBName) == 0 {
		return nil, errors.IllegalArgumentError.Errorf("dbname required")
	}
	switch c.Driver {
	case DriverMysql:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True",
			c.User, c.Password, c.Host, c.Port, c.DBName)
		return mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DefaultDatetimePrecision:  &zeroDefaultDatetimePrecision,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s sslmode=disable",
			c.User, c.Password, c.Host, c.Port, c.DBName)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(c.sqliteDSN()), nil
	default:
		return nil, errors.IllegalArgumentError.Errorf("not support db type:%s", c.Driver)
	}
}

func (c Config) sqliteDSN() string {
	dsn := "file:" + c.DBName
	if len(c.User) > 0 {
		q := url.Values{}
		q.Set("_auth", "")
		q.Set("_auth_user", c.User)
		q.Set("_auth_pass", c.Password)
		dsn += "?" + q.Encode()
	}
	return dsn
}

func OpenDatabase(cfg Config, l log.Logger) (*gorm.DB, error) {
	d, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger: newDatabaseLogger(l.WithFields(log.Fields{log.FieldKeyModule: "database"})),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fail to open database driver:%s err:%s", cfg.Driver, err.Error())
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrapf(err, "fail to get sql.DB err:%s", err.Error())
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpenConns
	}
	if cfg.Driver == DriverSQLite && cfg.DBName == ":memory:" {
		// every connection of an in-memory database is a separate database
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxIdleTime(time.Minute)
	return db, nil
}
