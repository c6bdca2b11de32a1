// Package repository implements the engine's store interfaces on Postgres
// via gorm. Operations that must commit together run inside one database
// transaction.
package repository

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bingo-live/backend/apperr"
)

// translate maps driver-level lookup failures onto the engine's taxonomy.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}

func encodeMetadata(metadata map[string]interface{}) datatypes.JSON {
	if len(metadata) == 0 {
		return nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
