package dw1000

// System status register bits, low word of SYS_STATUS. Only the events the
// receive pipeline polls for are named here; the full register is five bytes
// but every bit of interest sits in the low 32.
const (
	StatusRXPRD   uint32 = 0x00000100 // preamble detected
	StatusRXSFDD  uint32 = 0x00000200 // SFD detected
	StatusLDEDone uint32 = 0x00000400 // leading edge detection complete
	StatusRXPHD   uint32 = 0x00000800 // PHY header detected
	StatusRXPHE   uint32 = 0x00001000 // PHY header error
	StatusRXDFR   uint32 = 0x00002000 // data frame ready
	StatusRXFCG   uint32 = 0x00004000 // frame checksum good
	StatusRXFCE   uint32 = 0x00008000 // frame checksum error
	StatusRXRFSL  uint32 = 0x00010000 // Reed-Solomon sync loss
	StatusRXRFTO  uint32 = 0x00020000 // frame wait timeout
	StatusLDEErr  uint32 = 0x00040000 // leading edge detection error
	StatusRXPTO   uint32 = 0x00200000 // preamble detection timeout
	StatusRXSFDTO uint32 = 0x04000000 // SFD timeout
	StatusAffRej  uint32 = 0x20000000 // frame rejected by address filter
)

// StatusAllRXErr is every receiver error condition, the mask the error path
// clears before resetting the receiver.
const StatusAllRXErr = StatusRXPHE | StatusRXFCE | StatusRXRFSL |
	StatusRXRFTO | StatusLDEErr | StatusRXPTO | StatusRXSFDTO | StatusAffRej

// StatusRXEvent is any event that ends a reception cycle.
const StatusRXEvent = StatusRXFCG | StatusAllRXErr

// RXFrameLenMask extracts the received frame length from the low bits of the
// RX frame info register (extended length mode, up to 1023 bytes).
const RXFrameLenMask uint32 = 0x000003FF
