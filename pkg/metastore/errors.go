package metastore

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all backends. Use errors.Is against the base errors
// (ErrNotFound, ErrConflict, ErrInvalidArgument, ErrStorageFault) to classify.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStorageFault    = errors.New("storage fault")

	ErrPackageNotFound  = fmt.Errorf("package %w", ErrNotFound)
	ErrRevisionNotFound = fmt.Errorf("revision %w", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("tag %w", ErrNotFound)
	ErrMetadataNotFound = fmt.Errorf("package metadata %w", ErrNotFound)

	ErrPackageExists = fmt.Errorf("package already exists: %w", ErrConflict)
	ErrTagExists     = fmt.Errorf("tag already exists: %w", ErrConflict)

	ErrInvalidPackageID = fmt.Errorf("package id: %w", ErrInvalidArgument)
	ErrInvalidTagName   = fmt.Errorf("tag name: %w", ErrInvalidArgument)
	ErrMissingTagUpdate = fmt.Errorf("expecting at least one of new name or new description: %w", ErrInvalidArgument)
	ErrInvalidResource  = fmt.Errorf("resource: %w", ErrInvalidArgument)

	ErrCorruptMetadata = fmt.Errorf("unable to parse package metadata: %w", ErrStorageFault)

	ErrUnknownDriver       = errors.New("unknown driver")
	ErrDriverConfiguration = errors.New("driver configuration")
)
