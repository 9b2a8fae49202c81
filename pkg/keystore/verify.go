package keystore

// VerifyResult classifies a key lookup. Anything but VerifyOK surfaces to the
// user as a warning line rather than a hard error, because a package with a
// missing or wrong key is still worth parsing.
type VerifyResult int

const (
	VerifyOK VerifyResult = iota
	VerifyInvalidParams
	VerifyNoSupport
	VerifyKeyDBNotLoaded
	VerifyKeyDBError
	VerifyKeyNotFound
	VerifyKeyInvalid
	VerifyCipherInitErr
	VerifyCipherDecryptErr
	VerifyWrongKey
	VerifyUnknown
)

func (v VerifyResult) String() string {
	switch v {
	case VerifyOK:
		return "OK"
	case VerifyInvalidParams:
		return "InvalidParams"
	case VerifyNoSupport:
		return "NoSupport"
	case VerifyKeyDBNotLoaded:
		return "KeyDBNotLoaded"
	case VerifyKeyDBError:
		return "KeyDBError"
	case VerifyKeyNotFound:
		return "KeyNotFound"
	case VerifyKeyInvalid:
		return "KeyInvalid"
	case VerifyCipherInitErr:
		return "CipherInitErr"
	case VerifyCipherDecryptErr:
		return "CipherDecryptErr"
	case VerifyWrongKey:
		return "WrongKey"
	default:
		return "Unknown"
	}
}

// Message returns the user-facing sentence shown in the Warning field.
func (v VerifyResult) Message() string {
	switch v {
	case VerifyOK:
		return "Something happened."
	case VerifyInvalidParams:
		return "Invalid parameters."
	case VerifyNoSupport:
		return "Decryption is not supported in this build."
	case VerifyKeyDBNotLoaded:
		return "The key database could not be loaded."
	case VerifyKeyDBError:
		return "An error occurred while loading the key database."
	case VerifyKeyNotFound:
		return "The required key was not found in the key database."
	case VerifyKeyInvalid:
		return "The key in the key database is not a valid key."
	case VerifyCipherInitErr:
		return "AES decryption could not be initialized."
	case VerifyCipherDecryptErr:
		return "AES decryption failed."
	case VerifyWrongKey:
		return "The key in the key database is incorrect."
	default:
		return "Unknown error."
	}
}
