package framestretch

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ReadFrame reads a FITS file into a RawFrame. Samples are clamped into
// the uint16 range regardless of the on-disk BITPIX; the sensor's Bayer
// pattern is taken from the BAYERPAT header when present.
func ReadFrame(filePath string) (*RawFrame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return readFrame(f)
}

// ReadFrameFromBytes reads a FITS image from an in-memory buffer, e.g. one
// received from a camera's image-transfer endpoint.
func ReadFrameFromBytes(data []byte) (*RawFrame, error) {
	return readFrame(bytes.NewReader(data))
}

func readFrame(r io.Reader) (*RawFrame, error) {
	var bitpix, naxis, width, height int
	bzero := 0.0
	bscale := 1.0
	headerDone := false
	headers := make(map[string]string)

	recordBuf := make([]byte, 80)

	for !headerDone {
		for i := 0; i < 36; i++ {
			_, err := io.ReadFull(r, recordBuf)
			if err != nil {
				return nil, fmt.Errorf("reading FITS header record: %w", err)
			}
			record := string(recordBuf)
			keyword := strings.TrimSpace(record[:8])

			if keyword == "END" {
				headerDone = true
				remaining := 35 - i
				if remaining > 0 {
					skipBuf := make([]byte, remaining*80)
					io.ReadFull(r, skipBuf)
				}
				break
			}

			if len(record) > 10 && record[8] == '=' && record[9] == ' ' {
				rawValue := strings.TrimSpace(strings.SplitN(record[10:], "/", 2)[0])
				parsedValue := parseFitsValue(rawValue)

				if keyword != "" && parsedValue != "" {
					headers[strings.ToUpper(keyword)] = parsedValue
				}

				switch keyword {
				case "BITPIX":
					bitpix, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS":
					naxis, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS1":
					width, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS2":
					height, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "BZERO":
					bzero, _ = strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
				case "BSCALE":
					bscale, _ = strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
				}
			}
		}
	}

	if naxis < 2 || width == 0 || height == 0 {
		return nil, fmt.Errorf("invalid FITS: NAXIS=%d, NAXIS1=%d, NAXIS2=%d", naxis, width, height)
	}

	effectiveBpp := 16
	if bitpix == 8 {
		effectiveBpp = 8
	}

	numPixels := width * height
	pixels := make([]uint16, numPixels)

	switch bitpix {
	case 16:
		rawBytes := make([]byte, numPixels*2)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading 16-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			signedVal := int16(binary.BigEndian.Uint16(rawBytes[i*2:]))
			physicalVal := float64(signedVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case -32:
		rawBytes := make([]byte, numPixels*4)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading -32 float pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			intBits := binary.BigEndian.Uint32(rawBytes[i*4:])
			floatVal := math.Float32frombits(intBits)
			physicalVal := float64(floatVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case 8:
		rawBytes := make([]byte, numPixels)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading 8-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			physicalVal := float64(rawBytes[i])*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case 32:
		rawBytes := make([]byte, numPixels*4)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading 32-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			intVal := int32(binary.BigEndian.Uint32(rawBytes[i*4:]))
			physicalVal := float64(intVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	default:
		return nil, fmt.Errorf("unsupported BITPIX: %d", bitpix)
	}

	return &RawFrame{
		Pixels:   pixels,
		Width:    width,
		Height:   height,
		BitDepth: effectiveBpp,
		Pattern:  ParseBayerPattern(headers["BAYERPAT"]),
		Order:    RowMajor,
		Headers:  headers,
	}, nil
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseFitsValue(rawValue string) string {
	if rawValue == "" {
		return ""
	}
	if rawValue == "T" {
		return "True"
	}
	if rawValue == "F" {
		return "False"
	}
	if strings.HasPrefix(rawValue, "'") {
		endQuote := strings.LastIndex(rawValue, "'")
		if endQuote > 0 {
			return strings.TrimRight(rawValue[1:endQuote], " ")
		}
		return strings.TrimLeft(strings.TrimRight(rawValue, " "), "'")
	}
	return rawValue
}
