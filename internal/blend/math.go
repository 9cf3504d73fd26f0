package blend

// div255 divides x by 255 using the fast shift approximation (x+255)>>8.
// The maximum error of +1 is imperceptible in compositing.
func div255(x uint16) uint16 {
	return (x + 255) >> 8
}

// mulDiv255 multiplies two bytes and divides by 255.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint16(a) * uint16(b)))
}

// unmul converts a premultiplied channel back to its unmultiplied value.
func unmul(c, a byte) byte {
	if a == 0 {
		return 0
	}
	v := (uint16(c) * 255) / uint16(a)
	return clamp255(v)
}

// clamp255 clamps a uint16 to byte range.
func clamp255(x uint16) byte {
	if x > 255 {
		return 255
	}
	return byte(x)
}

// addClamp adds two bytes, clamping to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}
