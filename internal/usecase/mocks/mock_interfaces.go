//	mockgen -destination=internal/usecase/mocks/mock_interfaces.go -package=mocks github.com/okanin/payflow/internal/usecase AccountDirectory
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/okanin/payflow/internal/domain"
	gomock "go.uber.org/mock/gomock"
)

// MockAccountDirectory is a mock of AccountDirectory interface.
type MockAccountDirectory struct {
	ctrl     *gomock.Controller
	recorder *MockAccountDirectoryMockRecorder
	isgomock struct{}
}

// MockAccountDirectoryMockRecorder is the mock recorder for MockAccountDirectory.
type MockAccountDirectoryMockRecorder struct {
	mock *MockAccountDirectory
}

// NewMockAccountDirectory creates a new mock instance.
func NewMockAccountDirectory(ctrl *gomock.Controller) *MockAccountDirectory {
	mock := &MockAccountDirectory{ctrl: ctrl}
	mock.recorder = &MockAccountDirectoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAccountDirectory) EXPECT() *MockAccountDirectoryMockRecorder {
	return m.recorder
}

// ResolveEmail mocks base method.
func (m *MockAccountDirectory) ResolveEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ResolveEmail", ctx, email)
	ret0, _ := ret[0].(*domain.Account)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ResolveEmail indicates an expected call of ResolveEmail.
func (mr *MockAccountDirectoryMockRecorder) ResolveEmail(ctx, email any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ResolveEmail", reflect.TypeOf((*MockAccountDirectory)(nil).ResolveEmail), ctx, email)
}
