package flat

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/custodia-labs/kassist/internal/core/domain"
)

const (
	idMapMagic   = "KAID"
	idMapVersion = uint32(1)
)

func encodeIDMap(m *domain.IDMap) []byte {
	size := 4 + 4 + 8 + 4
	for _, id := range m.IDs {
		size += 4 + len(id)
	}
	out := make([]byte, 0, size)

	out = append(out, idMapMagic...)
	out = binary.LittleEndian.AppendUint32(out, idMapVersion)
	out = binary.LittleEndian.AppendUint64(out, m.Generation)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(m.IDs)))
	for _, id := range m.IDs {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(id)))
		out = append(out, id...)
	}
	return out
}

func decodeIDMap(data []byte) (*domain.IDMap, error) {
	const fixed = 4 + 4 + 8 + 4
	if len(data) < fixed || string(data[:4]) != idMapMagic {
		return nil, errors.New("flat: not an id map file")
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != idMapVersion {
		return nil, fmt.Errorf("flat: unsupported id map version %d", v)
	}

	m := &domain.IDMap{Generation: binary.LittleEndian.Uint64(data[8:16])}
	n := int(binary.LittleEndian.Uint32(data[16:20]))
	if n > (len(data)-fixed)/4 {
		return nil, errors.New("flat: id map count exceeds file size")
	}
	off := fixed
	m.IDs = make([]string, 0, n)
	for idx := 0; idx < n; idx++ {
		if off+4 > len(data) {
			return nil, errors.New("flat: truncated id map")
		}
		l := int(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
		if off+l > len(data) {
			return nil, errors.New("flat: truncated id")
		}
		m.IDs = append(m.IDs, string(data[off:off+l]))
		off += l
	}
	if off != len(data) {
		return nil, errors.New("flat: trailing bytes in id map")
	}
	return m, nil
}
