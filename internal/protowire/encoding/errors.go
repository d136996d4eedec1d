package encoding

import "errors"

var errDecimalSpecial = errors.New("encoding: decimal special value (infinity/NaN) not supported")

var errDecimalExponentRange = errors.New("encoding: decimal exponent out of range [-6143, 6144]")
