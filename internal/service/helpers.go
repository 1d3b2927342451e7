package service

import "strconv"

func strconvUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
