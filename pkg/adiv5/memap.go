package adiv5

// Align is a CSW transfer size / alignment class.
type Align int

const (
	AlignWord Align = iota
	AlignHalfword
	AlignByte
)

// bytes returns the number of bytes one transfer unit covers.
func (a Align) bytes() uint32 {
	switch a {
	case AlignWord:
		return 4
	case AlignHalfword:
		return 2
	default:
		return 1
	}
}

// cswSize is the CSW.SIZE field encoding for each alignment class.
func (a Align) cswSize() uint32 {
	switch a {
	case AlignWord:
		return 2
	case AlignHalfword:
		return 1
	default:
		return 0
	}
}

const cswAddrIncSingle = 1 << 4

// RegRDBUFF drains the pipelined DRW result without issuing a new AP
// transfer. It shares DRW's low 4 bits (0xC) by construction: on real
// hardware RDBUFF and DRW alias the same DP access slot, distinguished
// only by whether an AP SELECT just preceded it.
const RegRDBUFF = RegDRW

// alignOf implements align_of(x) from §4.D: WORD if 4-byte aligned, else
// HALFWORD if 2-byte aligned, else BYTE.
func alignOf(x uint32) Align {
	switch {
	case x&3 == 0:
		return AlignWord
	case x&1 == 0:
		return AlignHalfword
	default:
		return AlignByte
	}
}

// transferAlign computes align = min(align_of(addr), align_of(len)),
// where a coarser class (WORD) is "larger" than a finer one (BYTE); the
// enum order above already ranks WORD < HALFWORD < BYTE for a plain max.
func transferAlign(addr, length uint32) Align {
	a, l := alignOf(addr), alignOf(length)
	if a > l {
		return a
	}
	return l
}

const tarWrapMask = ^uint32(0x3FF)

func setupAccess(ap *AP, align Align, addr uint32) error {
	csw := (ap.CSW &^ (cswSizeMask | cswAddrIncMask)) | cswAddrIncSingle | align.cswSize()
	if err := ap.Write(RegCSW, csw); err != nil {
		return err
	}
	return ap.Write(RegTAR, addr)
}

// extract pulls the lane addressed by src out of a 32-bit DRW read and
// writes it into dst (§4.D read-path step 4).
func extract(dst []byte, src uint32, val uint32, align Align) {
	switch align {
	case AlignByte:
		dst[0] = byte(val >> ((src & 3) * 8))
	case AlignHalfword:
		v := val >> ((src & 2) * 8)
		dst[0] = byte(v)
		dst[1] = byte(v >> 8)
	default: // Word
		dst[0] = byte(val)
		dst[1] = byte(val >> 8)
		dst[2] = byte(val >> 16)
		dst[3] = byte(val >> 24)
	}
}

// pack is the write-path mirror of extract: lifts bytes from src into
// the correctly-shifted 32-bit lane for a DRW write.
func pack(src []byte, dest uint32, align Align) uint32 {
	switch align {
	case AlignByte:
		return uint32(src[0]) << ((dest & 3) * 8)
	case AlignHalfword:
		v := uint32(src[0]) | uint32(src[1])<<8
		return v << ((dest & 2) * 8)
	default: // Word
		return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
	}
}

// MemRead implements mem_read (§4.D): a sized/aligned MEM-AP read with
// pipelined DRW transfers, lane extraction, and automatic TAR rewrite on
// every 1 KiB boundary crossing.
func MemRead(ap *AP, dst []byte, src uint32, length uint32) error {
	if length == 0 {
		return nil
	}
	align := transferAlign(src, length)
	unit := align.bytes()
	count := length / unit

	if err := setupAccess(ap, align, src); err != nil {
		return err
	}
	if _, err := ap.Read(RegDRW); err != nil { // priming read, discarded
		return err
	}

	osrc := src
	off := uint32(0)
	for i := uint32(0); i < count-1; i++ {
		val, err := ap.Read(RegDRW)
		if err != nil {
			return err
		}
		extract(dst[off:off+unit], src, val, align)
		src += unit
		off += unit

		if (src^osrc)&tarWrapMask != 0 {
			if err := ap.Write(RegTAR, src); err != nil {
				return err
			}
			if _, err := ap.Read(RegDRW); err != nil {
				return err
			}
			osrc = src
		}
	}

	val, err := ap.Read(RegRDBUFF)
	if err != nil {
		return err
	}
	extract(dst[off:off+unit], src, val, align)
	return nil
}

// MemWrite implements mem_write_sized (§4.D write path): symmetric to
// MemRead, packing each unit into the correct lane before the DRW write
// and re-arming TAR on 1 KiB wrap, without the read side's priming reads.
func MemWrite(ap *AP, dest uint32, src []byte, length uint32) error {
	if length == 0 {
		return nil
	}
	align := transferAlign(dest, length)
	unit := align.bytes()
	count := length / unit

	if err := setupAccess(ap, align, dest); err != nil {
		return err
	}

	odest := dest
	off := uint32(0)
	for i := uint32(0); i < count; i++ {
		val := pack(src[off:off+unit], dest, align)
		if err := ap.Write(RegDRW, val); err != nil {
			return err
		}
		dest += unit
		off += unit

		if i+1 < count && (dest^odest)&tarWrapMask != 0 {
			if err := ap.Write(RegTAR, dest); err != nil {
				return err
			}
			odest = dest
		}
	}
	return nil
}
