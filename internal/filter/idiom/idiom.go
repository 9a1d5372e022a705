// Package idiom provides backend-independent helpers for common Ethernet
// and IP match patterns, built once against a per-backend Factory.
package idiom

import "github.com/SkynetNext/bpf-filter/internal/filter/predicate"

// Factory builds terminal conditions for one backend's condition type C from
// a byte offset and a value to compare against.
type Factory[C any] interface {
	OffsetEqualsU8(offset uint32, value uint8) predicate.Expr[C]
	OffsetEqualsU16(offset uint32, value uint16) predicate.Expr[C]
	OffsetEqualsU32(offset uint32, value uint32) predicate.Expr[C]
}

// Ethernet frame layout offsets.
const (
	etherDstOffset  uint32 = 0
	etherSrcOffset  uint32 = 6
	etherTypeOffset uint32 = 12
	ipProtoOffset   uint32 = 14 + 9 // 9 bytes into the IPv4 header
	ipSrcOffset     uint32 = 14 + 12
	ipDstOffset     uint32 = 14 + 16
)

// EtherType values this package knows how to match by name.
const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeARP  uint16 = 0x0806
	EtherTypeIPv6 uint16 = 0x86dd
)

// IP protocol numbers this package knows how to match by name.
const (
	ProtoICMP uint8 = 1
	ProtoTCP  uint8 = 6
	ProtoUDP  uint8 = 17
)

// EtherType matches frames carrying the given EtherType.
func EtherType[C any](f Factory[C], et uint16) predicate.Expr[C] {
	return f.OffsetEqualsU16(etherTypeOffset, et)
}

// IPProto matches IPv4 frames whose protocol field equals proto. Callers
// combine it with EtherType(f, EtherTypeIPv4) when the frame's ethertype
// has not already been established.
func IPProto[C any](f Factory[C], proto uint8) predicate.Expr[C] {
	return f.OffsetEqualsU8(ipProtoOffset, proto)
}

// IPSrc matches an IPv4 source address given as its 32-bit network-order value.
func IPSrc[C any](f Factory[C], addr uint32) predicate.Expr[C] {
	return f.OffsetEqualsU32(ipSrcOffset, addr)
}

// IPDst matches an IPv4 destination address given as its 32-bit network-order value.
func IPDst[C any](f Factory[C], addr uint32) predicate.Expr[C] {
	return f.OffsetEqualsU32(ipDstOffset, addr)
}

// IPHost matches an IPv4 packet with either source or destination equal to addr.
func IPHost[C any](f Factory[C], addr uint32) predicate.Expr[C] {
	return predicate.Or(IPSrc(f, addr), IPDst(f, addr))
}

// EtherSrc matches a 48-bit Ethernet source address, split into its high 16
// bits and low 32 bits since no single load covers 6 bytes.
func EtherSrc[C any](f Factory[C], high uint16, low uint32) predicate.Expr[C] {
	return predicate.And(
		f.OffsetEqualsU16(etherSrcOffset, high),
		f.OffsetEqualsU32(etherSrcOffset+2, low),
	)
}

// EtherDst matches a 48-bit Ethernet destination address, split the same way as EtherSrc.
func EtherDst[C any](f Factory[C], high uint16, low uint32) predicate.Expr[C] {
	return predicate.And(
		f.OffsetEqualsU16(etherDstOffset, high),
		f.OffsetEqualsU32(etherDstOffset+2, low),
	)
}

// EtherHost matches either EtherSrc or EtherDst for the given address.
func EtherHost[C any](f Factory[C], high uint16, low uint32) predicate.Expr[C] {
	return predicate.Or(EtherSrc(f, high, low), EtherDst(f, high, low))
}
