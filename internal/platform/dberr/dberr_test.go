// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
)

func TestWrap(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	tests := []struct {
		name     string
		input    error
		wantCode int
	}{
		{"no_documents", mongo.ErrNoDocuments, apperr.CodeNotFound},
		{"duplicate_key", duplicate, apperr.CodeConflict},
		{"unknown", errors.New("socket closed"), apperr.CodeInternal},
		{"already_classified", apperr.Locked("spam"), apperr.CodeLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := apperr.As(Wrap(tt.input, "User"))
			if assert.NotNil(t, wrapped) {
				assert.Equal(t, tt.wantCode, wrapped.WireCode)
			}
		})
	}

	assert.NoError(t, Wrap(nil, "User"))
	assert.Equal(t, "Not Found: User", Wrap(mongo.ErrNoDocuments, "User").Error())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(mongo.ErrNoDocuments))
	assert.True(t, IsNotFound(apperr.NotFound("Site")))
	assert.False(t, IsNotFound(errors.New("boom")))
}
