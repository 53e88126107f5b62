package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	formatVersionCurrent = 1
)

const (
	flagVerified        = 1 << 0
	flagProfileComplete = 1 << 1
	flagRememberMe      = 1 << 2
)

// Encode serializes a session into the compact binary blob stored in Redis.
// The token itself is never part of the blob; it is the storage key.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(formatVersionCurrent)

	if len(s.PrincipalID) > 255 {
		return nil, errors.New("principal id too long")
	}
	buf.WriteByte(byte(len(s.PrincipalID)))
	buf.WriteString(s.PrincipalID)

	if len(s.Email) > 255 {
		return nil, errors.New("email too long")
	}
	buf.WriteByte(byte(len(s.Email)))
	buf.WriteString(s.Email)

	if len(s.Role) > 255 {
		return nil, errors.New("role too long")
	}
	buf.WriteByte(byte(len(s.Role)))
	buf.WriteString(s.Role)

	if len(s.CSRFToken) > 255 {
		return nil, errors.New("csrf token too long")
	}
	buf.WriteByte(byte(len(s.CSRFToken)))
	buf.WriteString(s.CSRFToken)

	var flags byte
	if s.Verified {
		flags |= flagVerified
	}
	if s.ProfileComplete {
		flags |= flagProfileComplete
	}
	if s.RememberMe {
		flags |= flagRememberMe
	}
	buf.WriteByte(flags)

	buf.Write(s.IPHash[:])
	buf.Write(s.UserAgentHash[:])

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.LastActivity); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by [Encode]. The caller assigns Token from
// the storage key.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != formatVersionCurrent {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	principal, err := readString(reader)
	if err != nil {
		return nil, err
	}
	s.PrincipalID = principal

	email, err := readString(reader)
	if err != nil {
		return nil, err
	}
	s.Email = email

	role, err := readString(reader)
	if err != nil {
		return nil, err
	}
	s.Role = role

	csrf, err := readString(reader)
	if err != nil {
		return nil, err
	}
	s.CSRFToken = csrf

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	s.Verified = flags&flagVerified != 0
	s.ProfileComplete = flags&flagProfileComplete != 0
	s.RememberMe = flags&flagRememberMe != 0

	if _, err := io.ReadFull(reader, s.IPHash[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(reader, s.UserAgentHash[:]); err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.LastActivity); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}

func readString(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", err
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
