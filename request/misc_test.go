// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBodyBytes(t *testing.T) {
	shared := []byte("shared")
	testCases := []struct {
		name string
		body interface{}
		want []byte
	}{
		{"nil", nil, nil},
		{"string", "text", []byte("text")},
		{"empty string", "", []byte{}},
		{"bytes", shared, shared},
		{"reader", strings.NewReader("read me"), []byte("read me")},
		{"read closer", io.NopCloser(strings.NewReader("closed")), []byte("closed")},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			b, err := BodyBytes(testCase.body)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, b)
		})
	}

	t.Run("slice not copied", func(t *testing.T) {
		b, err := BodyBytes(shared)
		require.NoError(t, err)
		assert.Same(t, &shared[0], &b[0])
	})
	t.Run("invalid type", func(t *testing.T) {
		b, err := BodyBytes(struct{}{})
		assert.Nil(t, b)
		assert.EqualError(t, err, "reqx/request: invalid body type struct {} (use nil, string, []byte or io.Reader)")
	})

	cause := errors.New("disk gone")
	failures := []struct {
		name     string
		readN    int
		readErr  error
		closeErr error
	}{
		{"read fails", 4, cause, nil},
		{"close fails", 0, io.EOF, cause},
		{"both fail", 0, cause, errors.New("ignored")},
	}
	for _, f := range failures {
		t.Run(f.name, func(t *testing.T) {
			m := &mockReadCloser{}
			m.Test(t)
			m.On("Read", mock.Anything).Return(f.readN, f.readErr).Once()
			m.On("Close").Return(f.closeErr).Once()
			b, err := BodyBytes(m)
			assert.Nil(t, b)
			assert.Same(t, cause, err)
			m.AssertExpectations(t)
		})
	}
}

type mockReadCloser struct {
	mock.Mock
}

func (m *mockReadCloser) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockReadCloser) Close() error {
	return m.Called().Error(0)
}
