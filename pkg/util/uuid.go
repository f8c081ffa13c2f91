package util

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func StringToPgtypeUUID(uuidStr string) (pgtype.UUID, error) {
	// Parse the string into a uuid.UUID
	parsedUUID, err := uuid.Parse(uuidStr)
	if err != nil {
		return pgtype.UUID{}, err
	}

	// Create a pgtype.UUID and set the Bytes and Status
	var pgUUID pgtype.UUID
	pgUUID.Bytes = parsedUUID
	pgUUID.Valid = true

	return pgUUID, nil
}

func PgtypeUUIDToString(u pgtype.UUID) (string, error) {
	if !u.Valid {
		return "", errors.New("invalid UUID")
	}
	return uuid.UUID(u.Bytes).String(), nil
}

func MustPgtypeUUIDToString(u pgtype.UUID) string {
	s, err := PgtypeUUIDToString(u)
	if err != nil {
		panic(err)
	}
	return s
}
