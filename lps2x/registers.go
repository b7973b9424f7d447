package lps2x

import (
	"fmt"
	"math/bits"
)

// Register is the model-independent name of a device register. The address
// it maps to depends on the Model.
type Register uint8

// Registers. Not every register exists on both models.
const (
	RegRefPXL Register = iota
	RegRefPL
	RegRefPH
	RegInterruptCfg
	RegThsPL
	RegThsPH
	RegWhoAmI
	RegResConf
	RegCtrl1
	RegCtrl2
	RegCtrl3
	RegCtrl4 // LPS25HB only
	RegFifoCtrl
	RegRPDSL
	RegRPDSH
	RegIntSource
	RegFifoStatus
	RegStatus
	RegPressOutXL
	RegPressOutL
	RegPressOutH
	RegTempOutL
	RegTempOutH
	RegLPFPRes // LPS22HB only

	numRegisters
)

var registerNames = [numRegisters]string{
	RegRefPXL:       "REF_P_XL",
	RegRefPL:        "REF_P_L",
	RegRefPH:        "REF_P_H",
	RegInterruptCfg: "INTERRUPT_CFG",
	RegThsPL:        "THS_P_L",
	RegThsPH:        "THS_P_H",
	RegWhoAmI:       "WHO_AM_I",
	RegResConf:      "RES_CONF",
	RegCtrl1:        "CTRL_REG1",
	RegCtrl2:        "CTRL_REG2",
	RegCtrl3:        "CTRL_REG3",
	RegCtrl4:        "CTRL_REG4",
	RegFifoCtrl:     "FIFO_CTRL",
	RegRPDSL:        "RPDS_L",
	RegRPDSH:        "RPDS_H",
	RegIntSource:    "INT_SOURCE",
	RegFifoStatus:   "FIFO_STATUS",
	RegStatus:       "STATUS",
	RegPressOutXL:   "PRESS_OUT_XL",
	RegPressOutL:    "PRESS_OUT_L",
	RegPressOutH:    "PRESS_OUT_H",
	RegTempOutL:     "TEMP_OUT_L",
	RegTempOutH:     "TEMP_OUT_H",
	RegLPFPRes:      "LPFP_RES",
}

func (r Register) String() string {
	if r < numRegisters {
		return registerNames[r]
	}
	return fmt.Sprintf("Register(%d)", uint8(r))
}

// field names one bit or bit group inside a register.
type field uint8

const (
	// CTRL_REG1
	fODR field = iota
	fPowerOn
	fDiffEn
	fBDU
	fResetAZ
	fLPFPEnable
	fLPFPCfg
	fSIM

	// CTRL_REG2
	fBoot
	fFifoEn
	fStopOnFTH
	fFifoMeanDec
	fIfAddInc
	fI2CDis
	fSWReset
	fAutozero
	fOneShot

	// CTRL_REG3 / CTRL_REG4
	fIntHL
	fPPOD
	fIntFifoFull
	fIntFifoEmpty
	fIntFifoFTH
	fIntFifoOvr
	fIntDRDY
	fIntS

	// INTERRUPT_CFG
	fAutoRifp
	fResetARP
	fLIR
	fPLE
	fPHE

	// FIFO_CTRL
	fFifoMode
	fWTM

	// RES_CONF
	fAvgT
	fAvgP
	fLCEn

	// INT_SOURCE
	fBootStatus
	fIA
	fPL
	fPH

	// FIFO_STATUS
	fFTHFifo
	fOVR
	fEmptyFifo
	fFSS

	// STATUS
	fPOR
	fTOR
	fPDA
	fTDA
)

// bitfield locates a field: the register holding it and its mask.
type bitfield struct {
	reg  Register
	mask byte
}

// shift is the position of the field's lowest bit.
func (b bitfield) shift() int {
	return bits.TrailingZeros8(b.mask)
}

// encode places v at the field's position. Bits of v that do not fit the
// field are dropped.
func (b bitfield) encode(v byte) byte {
	return (v << b.shift()) & b.mask
}

// decode extracts the field value from a register byte.
func (b bitfield) decode(reg byte) byte {
	return (reg & b.mask) >> b.shift()
}

// flag encodes a single-bit field.
func (b bitfield) flag(on bool) byte {
	if on {
		return b.mask
	}
	return 0
}

var lps22hbRegisters = map[Register]byte{
	RegInterruptCfg: 0x0B,
	RegThsPL:        0x0C,
	RegThsPH:        0x0D,
	RegWhoAmI:       0x0F,
	RegCtrl1:        0x10,
	RegCtrl2:        0x11,
	RegCtrl3:        0x12,
	RegFifoCtrl:     0x14,
	RegRefPXL:       0x15,
	RegRefPL:        0x16,
	RegRefPH:        0x17,
	RegRPDSL:        0x18,
	RegRPDSH:        0x19,
	RegResConf:      0x1A,
	RegIntSource:    0x25,
	RegFifoStatus:   0x26,
	RegStatus:       0x27,
	RegPressOutXL:   0x28,
	RegPressOutL:    0x29,
	RegPressOutH:    0x2A,
	RegTempOutL:     0x2B,
	RegTempOutH:     0x2C,
	RegLPFPRes:      0x33,
}

var lps25hbRegisters = map[Register]byte{
	RegRefPXL:       0x08,
	RegRefPL:        0x09,
	RegRefPH:        0x0A,
	RegWhoAmI:       0x0F,
	RegResConf:      0x10,
	RegCtrl1:        0x20,
	RegCtrl2:        0x21,
	RegCtrl3:        0x22,
	RegCtrl4:        0x23,
	RegInterruptCfg: 0x24,
	RegIntSource:    0x25,
	RegStatus:       0x27,
	RegPressOutXL:   0x28,
	RegPressOutL:    0x29,
	RegPressOutH:    0x2A,
	RegTempOutL:     0x2B,
	RegTempOutH:     0x2C,
	RegFifoCtrl:     0x2E,
	RegFifoStatus:   0x2F,
	RegThsPL:        0x30,
	RegThsPH:        0x31,
	RegRPDSL:        0x39,
	RegRPDSH:        0x3A,
}

var lps22hbFields = map[field]bitfield{
	fAutoRifp: {RegInterruptCfg, 0b1000_0000},
	fResetARP: {RegInterruptCfg, 0b0100_0000},
	fAutozero: {RegInterruptCfg, 0b0010_0000},
	fResetAZ:  {RegInterruptCfg, 0b0001_0000},
	fDiffEn:   {RegInterruptCfg, 0b0000_1000},
	fLIR:      {RegInterruptCfg, 0b0000_0100},
	fPLE:      {RegInterruptCfg, 0b0000_0010},
	fPHE:      {RegInterruptCfg, 0b0000_0001},

	fODR:        {RegCtrl1, 0b0111_0000},
	fLPFPEnable: {RegCtrl1, 0b0000_1000},
	fLPFPCfg:    {RegCtrl1, 0b0000_0100},
	fBDU:        {RegCtrl1, 0b0000_0010},
	fSIM:        {RegCtrl1, 0b0000_0001},

	fBoot:      {RegCtrl2, 0b1000_0000},
	fFifoEn:    {RegCtrl2, 0b0100_0000},
	fStopOnFTH: {RegCtrl2, 0b0010_0000},
	fIfAddInc:  {RegCtrl2, 0b0001_0000},
	fI2CDis:    {RegCtrl2, 0b0000_1000},
	fSWReset:   {RegCtrl2, 0b0000_0100},
	fOneShot:   {RegCtrl2, 0b0000_0001},

	fIntHL:       {RegCtrl3, 0b1000_0000},
	fPPOD:        {RegCtrl3, 0b0100_0000},
	fIntFifoFull: {RegCtrl3, 0b0010_0000},
	fIntFifoFTH:  {RegCtrl3, 0b0001_0000},
	fIntFifoOvr:  {RegCtrl3, 0b0000_1000},
	fIntDRDY:     {RegCtrl3, 0b0000_0100},
	fIntS:        {RegCtrl3, 0b0000_0011},

	fFifoMode: {RegFifoCtrl, 0b1110_0000},
	fWTM:      {RegFifoCtrl, 0b0001_1111},

	fLCEn: {RegResConf, 0b0000_0001},

	fBootStatus: {RegIntSource, 0b1000_0000},
	fIA:         {RegIntSource, 0b0000_0100},
	fPL:         {RegIntSource, 0b0000_0010},
	fPH:         {RegIntSource, 0b0000_0001},

	fFTHFifo: {RegFifoStatus, 0b1000_0000},
	fOVR:     {RegFifoStatus, 0b0100_0000},
	fFSS:     {RegFifoStatus, 0b0011_1111},

	fTOR: {RegStatus, 0b0010_0000},
	fPOR: {RegStatus, 0b0001_0000},
	fTDA: {RegStatus, 0b0000_0010},
	fPDA: {RegStatus, 0b0000_0001},
}

var lps25hbFields = map[field]bitfield{
	fAvgT: {RegResConf, 0b0000_1100},
	fAvgP: {RegResConf, 0b0000_0011},

	fPowerOn: {RegCtrl1, 0b1000_0000},
	fODR:     {RegCtrl1, 0b0111_0000},
	fDiffEn:  {RegCtrl1, 0b0000_1000},
	fBDU:     {RegCtrl1, 0b0000_0100},
	fResetAZ: {RegCtrl1, 0b0000_0010},
	fSIM:     {RegCtrl1, 0b0000_0001},

	fBoot:        {RegCtrl2, 0b1000_0000},
	fFifoEn:      {RegCtrl2, 0b0100_0000},
	fStopOnFTH:   {RegCtrl2, 0b0010_0000},
	fFifoMeanDec: {RegCtrl2, 0b0001_0000},
	fI2CDis:      {RegCtrl2, 0b0000_1000},
	fSWReset:     {RegCtrl2, 0b0000_0100},
	fAutozero:    {RegCtrl2, 0b0000_0010},
	fOneShot:     {RegCtrl2, 0b0000_0001},

	fIntHL: {RegCtrl3, 0b1000_0000},
	fPPOD:  {RegCtrl3, 0b0100_0000},
	fIntS:  {RegCtrl3, 0b0000_0011},

	fIntFifoEmpty: {RegCtrl4, 0b0000_1000},
	fIntFifoFTH:   {RegCtrl4, 0b0000_0100},
	fIntFifoOvr:   {RegCtrl4, 0b0000_0010},
	fIntDRDY:      {RegCtrl4, 0b0000_0001},

	fLIR: {RegInterruptCfg, 0b0000_0100},
	fPLE: {RegInterruptCfg, 0b0000_0010},
	fPHE: {RegInterruptCfg, 0b0000_0001},

	fIA: {RegIntSource, 0b0000_0100},
	fPL: {RegIntSource, 0b0000_0010},
	fPH: {RegIntSource, 0b0000_0001},

	fPOR: {RegStatus, 0b0010_0000},
	fTOR: {RegStatus, 0b0001_0000},
	fPDA: {RegStatus, 0b0000_0010},
	fTDA: {RegStatus, 0b0000_0001},

	fFifoMode: {RegFifoCtrl, 0b1110_0000},
	fWTM:      {RegFifoCtrl, 0b0001_1111},

	fFTHFifo:   {RegFifoStatus, 0b1000_0000},
	fOVR:       {RegFifoStatus, 0b0100_0000},
	fEmptyFifo: {RegFifoStatus, 0b0010_0000},
	fFSS:       {RegFifoStatus, 0b0001_1111},
}
