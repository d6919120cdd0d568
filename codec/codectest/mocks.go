// Package codectest provides gomock doubles for codec.Decoder and
// codec.Encoder, hand-authored in the shape mockgen normally generates
// (the teacher's own snmp/mocks package, built the same way for its Conn
// interface, was not present in the retrieval pack). Used by
// filter_mock_test.go alongside the concrete examples/lenprefix codec for scenarios that need a
// stateful decoder rather than a strict-order expectation double.
package codectest

import (
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/damianoneill/iofilter/chain"
	"github.com/damianoneill/iofilter/codec"
)

// MockDecoder is a mock of the codec.Decoder interface.
type MockDecoder struct {
	ctrl     *gomock.Controller
	recorder *MockDecoderMockRecorder
}

// MockDecoderMockRecorder is the mock recorder for MockDecoder.
type MockDecoderMockRecorder struct {
	mock *MockDecoder
}

// NewMockDecoder creates a new mock instance.
func NewMockDecoder(ctrl *gomock.Controller) *MockDecoder {
	mock := &MockDecoder{ctrl: ctrl}
	mock.recorder = &MockDecoderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDecoder) EXPECT() *MockDecoderMockRecorder {
	return m.recorder
}

// Decode mocks base method.
func (m *MockDecoder) Decode(session chain.Session, in *chain.ByteBuffer, out *codec.DecoderOutput) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Decode", session, in, out)
	ret0, _ := ret[0].(error)
	return ret0
}

// Decode indicates an expected call of Decode.
func (mr *MockDecoderMockRecorder) Decode(session, in, out interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Decode", reflect.TypeOf((*MockDecoder)(nil).Decode), session, in, out)
}

// FinishDecode mocks base method.
func (m *MockDecoder) FinishDecode(session chain.Session, out *codec.DecoderOutput) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FinishDecode", session, out)
	ret0, _ := ret[0].(error)
	return ret0
}

// FinishDecode indicates an expected call of FinishDecode.
func (mr *MockDecoderMockRecorder) FinishDecode(session, out interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FinishDecode", reflect.TypeOf((*MockDecoder)(nil).FinishDecode), session, out)
}

// Dispose mocks base method.
func (m *MockDecoder) Dispose(session chain.Session) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Dispose", session)
	ret0, _ := ret[0].(error)
	return ret0
}

// Dispose indicates an expected call of Dispose.
func (mr *MockDecoderMockRecorder) Dispose(session interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Dispose", reflect.TypeOf((*MockDecoder)(nil).Dispose), session)
}

// MockEncoder is a mock of the codec.Encoder interface.
type MockEncoder struct {
	ctrl     *gomock.Controller
	recorder *MockEncoderMockRecorder
}

// MockEncoderMockRecorder is the mock recorder for MockEncoder.
type MockEncoderMockRecorder struct {
	mock *MockEncoder
}

// NewMockEncoder creates a new mock instance.
func NewMockEncoder(ctrl *gomock.Controller) *MockEncoder {
	mock := &MockEncoder{ctrl: ctrl}
	mock.recorder = &MockEncoderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEncoder) EXPECT() *MockEncoderMockRecorder {
	return m.recorder
}

// Encode mocks base method.
func (m *MockEncoder) Encode(session chain.Session, msg interface{}, out *codec.EncoderOutput) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Encode", session, msg, out)
	ret0, _ := ret[0].(error)
	return ret0
}

// Encode indicates an expected call of Encode.
func (mr *MockEncoderMockRecorder) Encode(session, msg, out interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Encode", reflect.TypeOf((*MockEncoder)(nil).Encode), session, msg, out)
}

// Dispose mocks base method.
func (m *MockEncoder) Dispose(session chain.Session) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Dispose", session)
	ret0, _ := ret[0].(error)
	return ret0
}

// Dispose indicates an expected call of Dispose.
func (mr *MockEncoderMockRecorder) Dispose(session interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Dispose", reflect.TypeOf((*MockEncoder)(nil).Dispose), session)
}
