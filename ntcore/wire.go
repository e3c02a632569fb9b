package ntcore

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WakeMessage is the fixed 16-byte binary record written to a thread's
// wake channel (spec section 3.1): {cookie uint64, signaled int32, pad
// int32}. Client matches cookie to identify which wait completed.
type WakeMessage struct {
	Cookie   uint64
	Signaled int32
}

const wakeMessageSize = 16

// EncodeWakeMessage writes msg's fixed-layout form to w.
func EncodeWakeMessage(w io.Writer, msg WakeMessage) error {
	var buf [wakeMessageSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], msg.Cookie)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(msg.Signaled))
	// buf[12:16] is the pad field, left zero.
	_, err := w.Write(buf[:])
	return err
}

// DecodeWakeMessage reads a fixed-layout WakeMessage from r.
func DecodeWakeMessage(r io.Reader) (WakeMessage, error) {
	var buf [wakeMessageSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return WakeMessage{}, err
	}
	return WakeMessage{
		Cookie:   binary.LittleEndian.Uint64(buf[0:8]),
		Signaled: int32(binary.LittleEndian.Uint32(buf[8:12])),
	}, nil
}

// Per-kind APC argument payloads. Each is a fixed-width struct so it can
// be written with encoding/binary without reflection-driven sizing (spec
// section 4.9, "tag byte + fixed-width fields").
type (
	VirtualAllocArgs struct {
		Addr, Size uint64
		Protect    uint32
	}
	VirtualFreeArgs struct {
		Addr, Size uint64
		FreeType   uint32
	}
	VirtualQueryArgs struct {
		Addr uint64
	}
	MapViewArgs struct {
		Handle             uint32
		Offset, Size, Addr uint64
		Protect            uint32
	}
	MapViewExArgs struct {
		MapViewArgs
		Machine uint32
	}
	UnmapViewArgs struct {
		Addr uint64
	}
	CreateThreadArgs struct {
		Entry, Arg uint64
		Suspend    uint32
	}
	AsyncIOArgs struct {
		Handle uint32
		Status uint32
		Count  uint64
	}
	DupHandleArgs struct {
		SourceProcess, TargetProcess, SourceHandle uint32
		Access                                     uint32
		Options                                    uint32
	}
	UserAPCArgs struct {
		Func, Arg1, Arg2, Arg3 uint64
	}
)

var errUnknownAPCKind = fmt.Errorf("ntcore: unknown apc kind in wire payload")

// EncodeAPCCall writes c's tag byte followed by its kind-specific
// fixed-width payload. Kinds with no payload (NONE, TIMER) write only the
// tag.
func EncodeAPCCall(w io.Writer, c APCCall) error {
	if _, err := w.Write([]byte{byte(c.Kind)}); err != nil {
		return err
	}
	switch c.Kind {
	case APCNone, APCTimer:
		return nil
	case APCUser:
		return writeArgs(w, c.Args, UserAPCArgs{})
	case APCVirtualAlloc:
		return writeArgs(w, c.Args, VirtualAllocArgs{})
	case APCVirtualFree:
		return writeArgs(w, c.Args, VirtualFreeArgs{})
	case APCVirtualQuery:
		return writeArgs(w, c.Args, VirtualQueryArgs{})
	case APCMapView:
		return writeArgs(w, c.Args, MapViewArgs{})
	case APCMapViewEx:
		return writeArgs(w, c.Args, MapViewExArgs{})
	case APCUnmapView:
		return writeArgs(w, c.Args, UnmapViewArgs{})
	case APCCreateThread:
		return writeArgs(w, c.Args, CreateThreadArgs{})
	case APCAsyncIO:
		return writeArgs(w, c.Args, AsyncIOArgs{})
	case APCDupHandle:
		return writeArgs(w, c.Args, DupHandleArgs{})
	default:
		return errUnknownAPCKind
	}
}

// DecodeAPCCall reads a tag byte and its matching fixed-width payload
// from r and reconstructs the APCCall.
func DecodeAPCCall(r io.Reader) (APCCall, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return APCCall{}, err
	}
	kind := APCKind(tag[0])
	var args any
	var err error
	switch kind {
	case APCNone, APCTimer:
	case APCUser:
		args, err = readArgs(r, UserAPCArgs{})
	case APCVirtualAlloc:
		args, err = readArgs(r, VirtualAllocArgs{})
	case APCVirtualFree:
		args, err = readArgs(r, VirtualFreeArgs{})
	case APCVirtualQuery:
		args, err = readArgs(r, VirtualQueryArgs{})
	case APCMapView:
		args, err = readArgs(r, MapViewArgs{})
	case APCMapViewEx:
		args, err = readArgs(r, MapViewExArgs{})
	case APCUnmapView:
		args, err = readArgs(r, UnmapViewArgs{})
	case APCCreateThread:
		args, err = readArgs(r, CreateThreadArgs{})
	case APCAsyncIO:
		args, err = readArgs(r, AsyncIOArgs{})
	case APCDupHandle:
		args, err = readArgs(r, DupHandleArgs{})
	default:
		return APCCall{}, errUnknownAPCKind
	}
	if err != nil {
		return APCCall{}, err
	}
	return APCCall{Kind: kind, Args: args}, nil
}

// EncodeAPCResult writes a result descriptor: tag byte, the kind-specific
// payload, then status as a uint32 (reusing the call argument layouts,
// since every APC kind here reports back the same shape it was queued
// with, per spec section 6's "prev_apc + prev result").
func EncodeAPCResult(w io.Writer, res APCResult) error {
	if err := EncodeAPCCall(w, APCCall{Kind: res.Kind, Args: res.Value}); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(res.Status))
	_, err := w.Write(buf[:])
	return err
}

// DecodeAPCResult is the inverse of EncodeAPCResult.
func DecodeAPCResult(r io.Reader) (APCResult, error) {
	call, err := DecodeAPCCall(r)
	if err != nil {
		return APCResult{}, err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return APCResult{}, err
	}
	status := NTStatus(binary.LittleEndian.Uint32(buf[:]))
	return APCResult{Kind: call.Kind, Status: status, Value: call.Args}, nil
}

func writeArgs[T any](w io.Writer, args any, zero T) error {
	v, ok := args.(T)
	if !ok {
		v = zero
	}
	return binary.Write(w, binary.LittleEndian, v)
}

func readArgs[T any](r io.Reader, _ T) (any, error) {
	var v T
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, err
	}
	return v, nil
}
