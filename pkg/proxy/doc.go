// Package proxy implements a transparent forwarding proxy over object values.
//
// A Proxy holds one target and implements every capability interface of
// package object by applying the same operation to the target and returning
// its result unchanged. Errors raised by the target are returned as they are.
//
// The target lives in a reserved slot, SlotName. Reading, writing and
// deleting that member binds, rebinds and unbinds the proxy; every other
// member name is forwarded. Operations on an unbound proxy fail with
// ErrUnbound, which matches object.ErrAttribute.
//
// Operands are forwarded as received, so a proxy on the other side of an
// operator resolves through its own forwarding. Only type-position arguments
// are unwrapped to their terminal value first: the candidate of a
// subclass-of query, the operand of Cmp and the exponent and modulus of
// PowMod.
//
// A Proxy performs no locking. Rebinding a proxy shared between goroutines
// races like any other shared reference.
package proxy
