package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

/*
Microsoft RIFF palette, one "data" chunk per palette:

typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

const palVersion = 0x0300

// Decode reads every palette stored in a RIFF PAL stream.
func Decode(r io.Reader) ([]color.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	var res []color.Palette
	for {
		id, _, data, err := rd.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return res, nil
			}
			return res, fmt.Errorf("could not read chunk #%d: %w", len(res), err)
		}
		if id != dataType {
			return res, fmt.Errorf("unsupported chunk type #%d: %s", len(res), string(id[:]))
		}

		pal, err := decodePalette(data)
		if err != nil {
			return res, fmt.Errorf("chunk #%d: %w", len(res), err)
		}
		res = append(res, pal)
	}
}

func decodePalette(r io.Reader) (color.Palette, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("could not read palette header: %w", err)
	}
	if ver := binary.LittleEndian.Uint16(hdr[:2]); ver != palVersion {
		return nil, fmt.Errorf("unsupported palette version: %#x", ver)
	}

	count := int(binary.LittleEndian.Uint16(hdr[2:]))
	entries := make([]byte, count*4)
	if _, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("could not read %d colors: %w", count, err)
	}

	pal := make(color.Palette, count)
	for i := range pal {
		e := entries[i*4:]
		pal[i] = color.RGBA{R: e[0], G: e[1], B: e[2], A: 0xFF}
	}
	return pal, nil
}

// Encode writes the palettes as a RIFF PAL stream, one data chunk each.
func Encode(w io.Writer, pals ...color.Palette) error {
	size := 4 // form type
	for _, pal := range pals {
		if len(pal) > 0xFFFF {
			return fmt.Errorf("palette of %d colors does not fit a PAL chunk", len(pal))
		}
		size += 8 + 4 + len(pal)*4 // chunk id + chunk size + palVersion + palNumEntries + 4 bytes/color
	}

	buf := make([]byte, 0, 8+size)
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = append(buf, palType[:]...)

	for _, pal := range pals {
		buf = append(buf, dataType[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(4+len(pal)*4))
		buf = binary.LittleEndian.AppendUint16(buf, palVersion)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(pal)))
		for _, col := range pal {
			c := color.RGBAModel.Convert(col).(color.RGBA)
			buf = append(buf, c.R, c.G, c.B, 0x00)
		}
	}

	if n, err := w.Write(buf); err != nil {
		return fmt.Errorf("could not write palette: %w", err)
	} else if n != len(buf) {
		return fmt.Errorf("wrote only %d/%d bytes", n, len(buf))
	}
	return nil
}
