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
	"testing"
	"time"

	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dbConfig = Config{
		Driver: DriverSQLite,
		DBName: ":memory:",
	}
)

type Struct struct {
	Model
	Field string `gorm:"uniqueIndex"`
}

func assertEqualModel(t *testing.T, expected, actual Model) bool {
	if !assert.Equal(t, expected.ID, actual.ID) {
		return false
	}
	if !assert.True(t, expected.CreatedAt.Equal(actual.CreatedAt)) {
		return false
	}
	return assert.True(t, expected.UpdatedAt.Equal(actual.UpdatedAt))
}

func assertEqualStruct(t *testing.T, expected, actual Struct) bool {
	if !assertEqualModel(t, expected.Model, actual.Model) {
		return false
	}
	return assert.Equal(t, expected.Field, actual.Field)
}

func Test_Repository(t *testing.T) {
	db, err := OpenDatabase(dbConfig, log.GlobalLogger())
	require.NoError(t, err)
	r, err := NewDefaultRepository[Struct](db, "struct")
	require.NoError(t, err)

	page, err := r.Page(Pageable{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalElements)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Content)

	var l []*Struct
	for i := 0; i < 3; i++ {
		s := &Struct{
			Field: fmt.Sprintf("field_%d", i),
		}
		err = r.Save(s)
		assert.NoError(t, err)
		assert.True(t, s.ID > 0)
		assert.False(t, time.Time{}.Equal(s.CreatedAt))
		assert.True(t, s.CreatedAt.Equal(s.UpdatedAt))

		rs, err := r.FindOne(Struct{
			Field: s.Field,
		})
		assert.NoError(t, err)
		assertEqualStruct(t, *s, *rs)

		rl, err := r.FindWithOrder("field desc", nil)
		assert.NoError(t, err)
		assertEqualStruct(t, *s, rl[0])

		l = append(l, s)
	}

	rs, err := r.FindOne(Struct{Field: "unknown"})
	assert.NoError(t, err)
	assert.Nil(t, rs)

	rl, err := r.FindWithOrder("", nil)
	assert.NoError(t, err)
	require.Equal(t, len(l), len(rl))
	for i, s := range l {
		assertEqualStruct(t, *s, rl[i])
	}

	p := Pageable{}
	page, err = r.Page(p, nil)
	assert.NoError(t, err)
	assert.Equal(t, len(l), page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	require.Equal(t, len(l), len(page.Content))
	for i, s := range l {
		assertEqualStruct(t, *s, page.Content[i])
	}

	p.Page, p.Size = 1, 2
	page, err = r.Page(p, nil)
	assert.NoError(t, err)
	assert.Equal(t, len(l), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Equal(t, 1, len(page.Content))
	assertEqualStruct(t, *l[2], page.Content[0])

	p.Sort = "field desc"
	page, err = r.Page(p, nil)
	assert.NoError(t, err)
	require.Equal(t, 1, len(page.Content))
	assertEqualStruct(t, *l[0], page.Content[0])

	p.Sort = "field desc; drop table struct"
	_, err = r.Page(p, nil)
	assert.True(t, errors.IllegalArgumentError.Equals(err), "%+v", err)

	err = r.Transaction(func(tx Repository[Struct]) error {
		if err := tx.Save(&Struct{Field: "rollback"}); err != nil {
			return err
		}
		return tx.Save(&Struct{Field: l[0].Field})
	})
	assert.Error(t, err)
	rs, err = r.FindOne(Struct{Field: "rollback"})
	assert.NoError(t, err)
	assert.Nil(t, rs)

	for _, s := range l {
		err = r.Delete(s)
		assert.NoError(t, err)

		rs, err = r.FindOne(Struct{Field: s.Field})
		assert.NoError(t, err)
		assert.Nil(t, rs)
	}
	page, err = r.Page(Pageable{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, page.TotalElements)
}

func Test_PageableValidate(t *testing.T) {
	for _, sort := range []string{"", "name", "name desc", "name DESC,id", "created_at asc, id desc"} {
		assert.NoError(t, Pageable{Sort: sort}.Validate(), sort)
	}
	for _, sort := range []string{"name;", "name desc desc", "1name", "name,", "(select 1)"} {
		assert.Error(t, Pageable{Sort: sort}.Validate(), sort)
	}
}

func Test_ConfigDialector(t *testing.T) {
	for _, driver := range []string{DriverMysql, DriverPostgres, DriverSQLite} {
		d, err := Config{Driver: driver, DBName: "abi"}.Dialector()
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name(), driver)
	}
	_, err := Config{Driver: "oracle", DBName: "abi"}.Dialector()
	assert.Error(t, err)
	_, err = Config{Driver: DriverSQLite}.Dialector()
	assert.Error(t, err)

	assert.Equal(t, "file:abi.db", Config{DBName: "abi.db"}.sqliteDSN())
	assert.Equal(t, "file:abi.db?_auth=&_auth_pass=p&_auth_user=u",
		Config{DBName: "abi.db", User: "u", Password: "p"}.sqliteDSN())
}
