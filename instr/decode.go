package instr

import (
	"fmt"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// Decode runs image bytecode the way the player does, stopping at the first
// terminator. It returns the decompressed bytes and the number of bytecode bytes
// consumed, terminator included.
func Decode(bytecode []byte) ([]byte, int, error) {
	output := []byte{}
	pos := 0

	next := func() (byte, error) {
		if pos >= len(bytecode) {
			return 0, vidgen.ErrMalformedInput.WithMessage(
				fmt.Sprintf("bytecode ends at %d without a terminator", pos))
		}
		value := bytecode[pos]
		pos++
		return value, nil
	}

	for {
		header, err := next()
		if err != nil {
			return nil, pos, err
		}
		if header == Terminator {
			return output, pos, nil
		}

		switch {
		case header&0x03 == literalOpcode:
			size := int(header>>2) + 1
			if pos+size > len(bytecode) {
				return nil, pos, vidgen.ErrMalformedInput.WithMessage(
					fmt.Sprintf("literal at %d runs past the end of the bytecode", pos-1))
			}
			output = append(output, bytecode[pos:pos+size]...)
			pos += size

		case header&0x07 == 0:
			size := int(header>>3) + 1
			first, err := next()
			if err != nil {
				return nil, pos, err
			}
			offset := int(first >> 1)
			if first&0x01 != 0 {
				low, err := next()
				if err != nil {
					return nil, pos, err
				}
				offset = (int(first>>1) << 8) | int(low)
			}
			if offset == 0 || offset > len(output) {
				return nil, pos, vidgen.ErrMalformedInput.WithMessage(
					fmt.Sprintf(
						"back-reference at %d has offset %d with only %d bytes output",
						pos,
						offset,
						len(output),
					),
				)
			}
			for i := 0; i < size; i++ {
				output = append(output, output[len(output)-offset])
			}

		default:
			var kind AlternatingKind
			switch header & 0x03 {
			case whiteOpcode:
				kind = White
			case blackOpcode:
				kind = Black
			default:
				kind = Flip
			}

			size := int(header>>3) + 1
			startsOnFill := kind != Flip && header&startsOnFillBit != 0
			for i := 0; i < size; i++ {
				if (i%2 == 1) != startsOnFill {
					var previous byte
					if len(output) > 0 {
						previous = output[len(output)-1]
					}
					output = append(output, kind.fill(previous))
				} else {
					value, err := next()
					if err != nil {
						return nil, pos, err
					}
					output = append(output, value)
				}
			}
		}
	}
}
