package signing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// KeystoreFormat is the container format of a keystore file.
type KeystoreFormat int

const (
	UnknownKeystore KeystoreFormat = iota
	JKS
	JCEKS
	PKCS12
)

func (f KeystoreFormat) String() string {
	switch f {
	case JKS:
		return "JKS"
	case JCEKS:
		return "JCEKS"
	case PKCS12:
		return "PKCS12"
	default:
		return "unknown"
	}
}

const (
	jksMagic   = 0xFEEDFEED
	jceksMagic = 0xCECECECE
)

// DetectKeystoreFormat identifies a keystore by its header.
func DetectKeystoreFormat(path string) (KeystoreFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return UnknownKeystore, err
	}
	defer f.Close() //nolint:errcheck
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return UnknownKeystore, fmt.Errorf("%s: %w", path, err)
	}
	return keystoreFormat(header[:n]), nil
}

func keystoreFormat(header []byte) KeystoreFormat {
	if len(header) >= 4 {
		switch binary.BigEndian.Uint32(header) {
		case jksMagic:
			return JKS
		case jceksMagic:
			return JCEKS
		}
	}
	// PKCS#12 is a DER SEQUENCE whose first element is INTEGER 3.
	if len(header) < 2 || header[0] != 0x30 {
		return UnknownKeystore
	}
	offset := 2
	if header[1]&0x80 != 0 {
		offset += int(header[1] & 0x7f)
	}
	if len(header) >= offset+3 && bytes.Equal(header[offset:offset+3], []byte{0x02, 0x01, 0x03}) {
		return PKCS12
	}
	return UnknownKeystore
}
