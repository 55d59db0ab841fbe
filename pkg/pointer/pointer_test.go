// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/sitegraph/pkg/pointer"
)

func TestFallback(t *testing.T) {
	assert.Equal(t, "caller", pointer.Fallback(nil, "caller"))
	assert.Equal(t, "u-1", pointer.Fallback(pointer.To("u-1"), "caller"))
}

func TestNonZero(t *testing.T) {
	assert.Nil(t, pointer.NonZero(""))
	assert.Nil(t, pointer.NonZero(0))
	assert.Equal(t, "u-1", *pointer.NonZero("u-1"))
}
