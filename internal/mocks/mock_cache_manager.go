// Package mocks holds testify mocks for finder interfaces, in mockery's
// expecter style.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock of cachemanager.CacheManager.
type MockCacheManager[K comparable, V any] struct {
	mock.Mock
}

type MockCacheManager_Expecter[K comparable, V any] struct {
	mock *mock.Mock
}

func (_m *MockCacheManager[K, V]) EXPECT() *MockCacheManager_Expecter[K, V] {
	return &MockCacheManager_Expecter[K, V]{mock: &_m.Mock}
}

// NewMockCacheManager creates a MockCacheManager and registers a cleanup that
// asserts every expectation was met.
func NewMockCacheManager[K comparable, V any](t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCacheManager[K, V] {
	m := &MockCacheManager[K, V]{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Get provides a mock function with given fields: ctx, key
func (_m *MockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	ret := _m.Called(ctx, key)

	var r0 V
	if rf, ok := ret.Get(0).(func(context.Context, K) V); ok {
		r0 = rf(ctx, key)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(V)
	}

	return r0, ret.Bool(1)
}

type MockCacheManager_Get_Call[K comparable, V any] struct {
	*mock.Call
}

// Get is a helper method to define mock.On call
func (_e *MockCacheManager_Expecter[K, V]) Get(ctx interface{}, key interface{}) *MockCacheManager_Get_Call[K, V] {
	return &MockCacheManager_Get_Call[K, V]{Call: _e.mock.On("Get", ctx, key)}
}

func (_c *MockCacheManager_Get_Call[K, V]) Return(value V, found bool) *MockCacheManager_Get_Call[K, V] {
	_c.Call.Return(value, found)
	return _c
}

// GetWithRefresh provides a mock function with given fields: ctx, key, ttl
func (_m *MockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	ret := _m.Called(ctx, key, ttl)

	var r0 V
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(V)
	}

	return r0, ret.Bool(1)
}

type MockCacheManager_GetWithRefresh_Call[K comparable, V any] struct {
	*mock.Call
}

// GetWithRefresh is a helper method to define mock.On call
func (_e *MockCacheManager_Expecter[K, V]) GetWithRefresh(ctx interface{}, key interface{}, ttl interface{}) *MockCacheManager_GetWithRefresh_Call[K, V] {
	return &MockCacheManager_GetWithRefresh_Call[K, V]{Call: _e.mock.On("GetWithRefresh", ctx, key, ttl)}
}

func (_c *MockCacheManager_GetWithRefresh_Call[K, V]) Return(value V, found bool) *MockCacheManager_GetWithRefresh_Call[K, V] {
	_c.Call.Return(value, found)
	return _c
}

// Set provides a mock function with given fields: ctx, key, value, ttl
func (_m *MockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	_m.Called(ctx, key, value, ttl)
}

type MockCacheManager_Set_Call[K comparable, V any] struct {
	*mock.Call
}

// Set is a helper method to define mock.On call
func (_e *MockCacheManager_Expecter[K, V]) Set(ctx interface{}, key interface{}, value interface{}, ttl interface{}) *MockCacheManager_Set_Call[K, V] {
	return &MockCacheManager_Set_Call[K, V]{Call: _e.mock.On("Set", ctx, key, value, ttl)}
}

func (_c *MockCacheManager_Set_Call[K, V]) Return() *MockCacheManager_Set_Call[K, V] {
	_c.Call.Return()
	return _c
}

// Flush provides a mock function with given fields: ctx
func (_m *MockCacheManager[K, V]) Flush(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

type MockCacheManager_Flush_Call[K comparable, V any] struct {
	*mock.Call
}

// Flush is a helper method to define mock.On call
func (_e *MockCacheManager_Expecter[K, V]) Flush(ctx interface{}) *MockCacheManager_Flush_Call[K, V] {
	return &MockCacheManager_Flush_Call[K, V]{Call: _e.mock.On("Flush", ctx)}
}

func (_c *MockCacheManager_Flush_Call[K, V]) Return(err error) *MockCacheManager_Flush_Call[K, V] {
	_c.Call.Return(err)
	return _c
}
