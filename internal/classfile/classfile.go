// SPDX-License-Identifier: MPL-2.0

// Package classfile reads the parts of a JVM class file that feature discovery
// needs: the declared class name, its super class, and the name, descriptor
// and access flags of every method. Bytecode and attributes are skipped.
package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	magic = 0xCAFEBABE

	// AccPublic is the ACC_PUBLIC access flag.
	AccPublic uint16 = 0x0001
	// AccStatic is the ACC_STATIC access flag.
	AccStatic uint16 = 0x0008

	// ConstructorName is the method name the JVM uses for constructors.
	ConstructorName = "<init>"
)

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

var (
	// ErrNotClassFile is returned when the input does not start with the class-file magic.
	ErrNotClassFile = errors.New("not a class file")
	// ErrMalformed is returned when the constant pool or member tables are inconsistent.
	ErrMalformed = errors.New("malformed class file")
)

type (
	// Class is the subset of a class file kept by Parse.
	Class struct {
		// Name is the internal (slash-separated) name of the class.
		Name string
		// SuperName is the internal name of the super class ("" for java/lang/Object).
		SuperName string
		// Access holds the class access flags.
		Access uint16
		// Methods lists declared methods in class-file order.
		Methods []Method
	}

	// Method is a declared method or constructor.
	Method struct {
		Name       string
		Descriptor string
		Access     uint16
	}

	cpEntry struct {
		tag   byte
		utf8  string
		index uint16
	}

	reader struct {
		r   io.Reader
		buf [8]byte
	}
)

// Parse reads a class file.
func Parse(r io.Reader) (*Class, error) {
	rd := &reader{r: r}

	m, err := rd.u4()
	if err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if m != magic {
		return nil, ErrNotClassFile
	}
	// minor_version, major_version
	if _, err := rd.u4(); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}

	pool, err := rd.constantPool()
	if err != nil {
		return nil, err
	}

	c := &Class{}
	if c.Access, err = rd.u2(); err != nil {
		return nil, fmt.Errorf("read access flags: %w", err)
	}
	thisIdx, err := rd.u2()
	if err != nil {
		return nil, fmt.Errorf("read this_class: %w", err)
	}
	if c.Name, err = pool.className(thisIdx); err != nil {
		return nil, err
	}
	superIdx, err := rd.u2()
	if err != nil {
		return nil, fmt.Errorf("read super_class: %w", err)
	}
	if superIdx != 0 {
		if c.SuperName, err = pool.className(superIdx); err != nil {
			return nil, err
		}
	}

	ifaces, err := rd.u2()
	if err != nil {
		return nil, fmt.Errorf("read interfaces: %w", err)
	}
	if err := rd.skip(int64(ifaces) * 2); err != nil {
		return nil, fmt.Errorf("read interfaces: %w", err)
	}

	if _, err := rd.members(pool); err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}
	if c.Methods, err = rd.members(pool); err != nil {
		return nil, fmt.Errorf("read methods: %w", err)
	}
	return c, nil
}

// Constructors returns the declared constructors in class-file order.
func (c *Class) Constructors() []Method {
	var out []Method
	for _, m := range c.Methods {
		if m.Name == ConstructorName {
			out = append(out, m)
		}
	}
	return out
}

// PublicConstructors returns the public constructors in class-file order,
// which is the order reflection reports them in practice.
func (c *Class) PublicConstructors() []Method {
	var out []Method
	for _, m := range c.Constructors() {
		if m.IsPublic() {
			out = append(out, m)
		}
	}
	return out
}

// StaticMethods returns the public static methods named name.
func (c *Class) StaticMethods(name string) []Method {
	var out []Method
	for _, m := range c.Methods {
		if m.Name == name && m.IsPublic() && m.IsStatic() {
			out = append(out, m)
		}
	}
	return out
}

// IsPublic reports whether ACC_PUBLIC is set.
func (m Method) IsPublic() bool { return m.Access&AccPublic != 0 }

// IsStatic reports whether ACC_STATIC is set.
func (m Method) IsStatic() bool { return m.Access&AccStatic != 0 }

// Params parses the method descriptor and returns its parameter types.
func (m Method) Params() ([]FieldType, error) {
	params, _, err := ParseMethodDescriptor(m.Descriptor)
	return params, err
}

type constantPool []cpEntry

func (p constantPool) utf8(idx uint16) (string, error) {
	if int(idx) >= len(p) || p[idx].tag != tagUtf8 {
		return "", fmt.Errorf("%w: constant %d is not Utf8", ErrMalformed, idx)
	}
	return p[idx].utf8, nil
}

func (p constantPool) className(idx uint16) (string, error) {
	if int(idx) >= len(p) || p[idx].tag != tagClass {
		return "", fmt.Errorf("%w: constant %d is not a Class", ErrMalformed, idx)
	}
	return p.utf8(p[idx].index)
}

func (rd *reader) constantPool() (constantPool, error) {
	count, err := rd.u2()
	if err != nil {
		return nil, fmt.Errorf("read constant pool count: %w", err)
	}
	pool := make(constantPool, count)
	for i := 1; i < int(count); i++ {
		tag, err := rd.u1()
		if err != nil {
			return nil, fmt.Errorf("read constant %d: %w", i, err)
		}
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			n, err := rd.u2()
			if err != nil {
				return nil, fmt.Errorf("read constant %d: %w", i, err)
			}
			b := make([]byte, n)
			if _, err := io.ReadFull(rd.r, b); err != nil {
				return nil, fmt.Errorf("read constant %d: %w", i, err)
			}
			e.utf8 = string(b)
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			if e.index, err = rd.u2(); err != nil {
				return nil, fmt.Errorf("read constant %d: %w", i, err)
			}
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			if err := rd.skip(4); err != nil {
				return nil, fmt.Errorf("read constant %d: %w", i, err)
			}
		case tagMethodHandle:
			if err := rd.skip(3); err != nil {
				return nil, fmt.Errorf("read constant %d: %w", i, err)
			}
		case tagLong, tagDouble:
			if err := rd.skip(8); err != nil {
				return nil, fmt.Errorf("read constant %d: %w", i, err)
			}
			pool[i] = e
			// 8-byte constants occupy two slots.
			i++
			continue
		default:
			return nil, fmt.Errorf("%w: unknown constant tag %d at %d", ErrMalformed, tag, i)
		}
		pool[i] = e
	}
	return pool, nil
}

func (rd *reader) members(pool constantPool) ([]Method, error) {
	count, err := rd.u2()
	if err != nil {
		return nil, err
	}
	out := make([]Method, 0, count)
	for range count {
		access, err := rd.u2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := rd.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := rd.u2()
		if err != nil {
			return nil, err
		}
		name, err := pool.utf8(nameIdx)
		if err != nil {
			return nil, err
		}
		desc, err := pool.utf8(descIdx)
		if err != nil {
			return nil, err
		}
		if err := rd.skipAttributes(); err != nil {
			return nil, err
		}
		out = append(out, Method{Name: name, Descriptor: desc, Access: access})
	}
	return out, nil
}

func (rd *reader) skipAttributes() error {
	count, err := rd.u2()
	if err != nil {
		return err
	}
	for range count {
		if _, err := rd.u2(); err != nil {
			return err
		}
		n, err := rd.u4()
		if err != nil {
			return err
		}
		if err := rd.skip(int64(n)); err != nil {
			return err
		}
	}
	return nil
}

func (rd *reader) u1() (byte, error) {
	if _, err := io.ReadFull(rd.r, rd.buf[:1]); err != nil {
		return 0, err
	}
	return rd.buf[0], nil
}

func (rd *reader) u2() (uint16, error) {
	if _, err := io.ReadFull(rd.r, rd.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(rd.buf[:2]), nil
}

func (rd *reader) u4() (uint32, error) {
	if _, err := io.ReadFull(rd.r, rd.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(rd.buf[:4]), nil
}

func (rd *reader) skip(n int64) error {
	copied, err := io.CopyN(io.Discard, rd.r, n)
	if err != nil {
		return err
	}
	if copied != n {
		return io.ErrUnexpectedEOF
	}
	return nil
}
