// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"encoding/binary"
	"strings"
)

const (
	accPublic = 0x0001
	accStatic = 0x0008
	accSuper  = 0x0020
)

// MethodSpec describes a method written by ClassFile.
type MethodSpec struct {
	Name       string
	Descriptor string
	Public     bool
	Static     bool
}

// Ctor returns a public constructor with the given descriptor.
func Ctor(descriptor string) MethodSpec {
	return MethodSpec{Name: "<init>", Descriptor: descriptor, Public: true}
}

// StaticMethod returns a public static method.
func StaticMethod(name, descriptor string) MethodSpec {
	return MethodSpec{Name: name, Descriptor: descriptor, Public: true, Static: true}
}

// ClassFile builds a minimal, structurally valid class file for the dotted
// class name fqn. Method bodies are omitted: the result is only meant to be
// read by a class-file parser, never loaded by a JVM.
func ClassFile(fqn string, methods ...MethodSpec) []byte {
	return Subclass(fqn, "java.lang.Object", methods...)
}

// Subclass is ClassFile with an explicit superclass.
func Subclass(fqn, super string, methods ...MethodSpec) []byte {
	var pool bytes.Buffer
	count := uint16(1)
	utf8 := map[string]uint16{}

	addUtf8 := func(s string) uint16 {
		if idx, ok := utf8[s]; ok {
			return idx
		}
		pool.WriteByte(1)
		writeU2(&pool, uint16(len(s)))
		pool.WriteString(s)
		utf8[s] = count
		count++
		return utf8[s]
	}
	addClass := func(internal string) uint16 {
		nameIdx := addUtf8(internal)
		pool.WriteByte(7)
		writeU2(&pool, nameIdx)
		count++
		return count - 1
	}

	thisIdx := addClass(strings.ReplaceAll(fqn, ".", "/"))
	superIdx := addClass(strings.ReplaceAll(super, ".", "/"))

	type member struct{ access, name, desc uint16 }
	members := make([]member, 0, len(methods))
	for _, m := range methods {
		var access uint16
		if m.Public {
			access |= accPublic
		}
		if m.Static {
			access |= accStatic
		}
		members = append(members, member{access: access, name: addUtf8(m.Name), desc: addUtf8(m.Descriptor)})
	}

	var out bytes.Buffer
	writeU4(&out, 0xCAFEBABE)
	writeU2(&out, 0)  // minor
	writeU2(&out, 52) // major (Java 8)
	writeU2(&out, count)
	out.Write(pool.Bytes())
	writeU2(&out, accPublic|accSuper)
	writeU2(&out, thisIdx)
	writeU2(&out, superIdx)
	writeU2(&out, 0) // interfaces
	writeU2(&out, 0) // fields
	writeU2(&out, uint16(len(members)))
	for _, m := range members {
		writeU2(&out, m.access)
		writeU2(&out, m.name)
		writeU2(&out, m.desc)
		writeU2(&out, 0) // attributes
	}
	writeU2(&out, 0) // class attributes
	return out.Bytes()
}

func writeU2(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}

func writeU4(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}
