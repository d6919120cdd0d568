package codec

import (
	"reflect"

	"github.com/damianoneill/iofilter/chain"
)

// Factory resolves the (encoder, decoder) pair to use for a session. It is
// the per-session binding point CodecFilter.OnAdd calls into (§4.1).
type Factory interface {
	// Encoder returns the encoder to use for session.
	Encoder(session chain.Session) (Encoder, error)
	// Decoder returns the decoder to use for session.
	Decoder(session chain.Session) (Decoder, error)
}

// funcFactory adapts a pair of per-session constructor functions to
// Factory. This is construction mode (a): an externally supplied factory,
// for callers who already have their own Factory-shaped type; NewFactory
// lets them build one from closures without declaring a named type,
// mirroring the closure-based ManagerOption style in snmp/managerfactory.go.
type funcFactory struct {
	newEncoder func(chain.Session) (Encoder, error)
	newDecoder func(chain.Session) (Decoder, error)
}

// NewFactory builds a Factory (construction mode (a)) from per-session
// constructor closures. Either may be nil if that side of the filter is
// never exercised; calling the corresponding method then returns
// IllegalUsage.
func NewFactory(newEncoder func(chain.Session) (Encoder, error), newDecoder func(chain.Session) (Decoder, error)) (Factory, error) {
	if newEncoder == nil && newDecoder == nil {
		return nil, NewIllegalUsage("codec factory requires at least one of newEncoder, newDecoder")
	}
	return &funcFactory{newEncoder: newEncoder, newDecoder: newDecoder}, nil
}

func (f *funcFactory) Encoder(session chain.Session) (Encoder, error) {
	if f.newEncoder == nil {
		return nil, NewIllegalUsage("codec factory has no encoder constructor")
	}
	return f.newEncoder(session)
}

func (f *funcFactory) Decoder(session chain.Session) (Decoder, error) {
	if f.newDecoder == nil {
		return nil, NewIllegalUsage("codec factory has no decoder constructor")
	}
	return f.newDecoder(session)
}

// sharedFactory hands out the same encoder/decoder instance to every
// session. This is construction mode (b): a fixed pair shared by all
// sessions. It is the caller's responsibility that the shared instances
// are safe for this use — typically because the codec is itself stateless,
// or because every session is in practice handled by one filter instance
// at a time.
type sharedFactory struct {
	enc Encoder
	dec Decoder
}

// NewSharedFactory builds a Factory (construction mode (b)) that returns
// the same enc/dec instances for every session. Either may be nil.
func NewSharedFactory(enc Encoder, dec Decoder) (Factory, error) {
	if enc == nil && dec == nil {
		return nil, NewIllegalUsage("shared codec factory requires at least one of enc, dec")
	}
	return &sharedFactory{enc: enc, dec: dec}, nil
}

func (f *sharedFactory) Encoder(chain.Session) (Encoder, error) {
	if f.enc == nil {
		return nil, NewIllegalUsage("shared codec factory has no encoder")
	}
	return f.enc, nil
}

func (f *sharedFactory) Decoder(chain.Session) (Decoder, error) {
	if f.dec == nil {
		return nil, NewIllegalUsage("shared codec factory has no decoder")
	}
	return f.dec, nil
}

// typeFactory instantiates a fresh encoder/decoder per session from
// reflect.Type identifiers using their zero-arg constructor (reflect.New
// followed by a type assertion). This is construction mode (c); a
// reimplementation is free to prefer NewFactory's closures instead (§9),
// but this mode is offered for parity with the source's reflective
// per-session codec construction.
type typeFactory struct {
	encType reflect.Type
	decType reflect.Type
}

// NewTypeFactory builds a Factory (construction mode (c)) that constructs
// a new zero-valued encType/decType instance (via reflect.New) per session.
// It fails at construction time, not per-session, if either type does not
// implement the corresponding interface.
func NewTypeFactory(encType, decType reflect.Type) (Factory, error) {
	tf := &typeFactory{encType: encType, decType: decType}

	if encType != nil {
		if !reflect.PointerTo(encType).Implements(reflect.TypeOf((*Encoder)(nil)).Elem()) {
			return nil, NewIllegalUsage("encoder type " + encType.String() + " does not implement codec.Encoder via pointer receiver")
		}
	}
	if decType != nil {
		if !reflect.PointerTo(decType).Implements(reflect.TypeOf((*Decoder)(nil)).Elem()) {
			return nil, NewIllegalUsage("decoder type " + decType.String() + " does not implement codec.Decoder via pointer receiver")
		}
	}
	if encType == nil && decType == nil {
		return nil, NewIllegalUsage("type codec factory requires at least one of encType, decType")
	}
	return tf, nil
}

func (f *typeFactory) Encoder(chain.Session) (Encoder, error) {
	if f.encType == nil {
		return nil, NewIllegalUsage("type codec factory has no encoder type")
	}
	v := reflect.New(f.encType)
	enc, ok := v.Interface().(Encoder)
	if !ok {
		return nil, NewIllegalUsage("encoder type " + f.encType.String() + " does not implement codec.Encoder")
	}
	return enc, nil
}

func (f *typeFactory) Decoder(chain.Session) (Decoder, error) {
	if f.decType == nil {
		return nil, NewIllegalUsage("type codec factory has no decoder type")
	}
	v := reflect.New(f.decType)
	dec, ok := v.Interface().(Decoder)
	if !ok {
		return nil, NewIllegalUsage("decoder type " + f.decType.String() + " does not implement codec.Decoder")
	}
	return dec, nil
}
