// Package lps2x controls the ST LPS22HB and LPS25HB MEMS barometric pressure
// sensors over I²C or SPI.
//
// One Dev drives either model. The model is chosen when the bus adapter is
// built (NewI2C or NewSPI) and selects the register map, the bit layout of
// every control register and the temperature scale. Features that exist on
// only one model return an error wrapping ErrNotSupported on the other.
//
// Dev is not safe for concurrent use. Most setters are read-modify-write
// sequences of two bus transactions; if another bus master or a second Dev
// touches the same register in between, one side's change is lost. Guard a
// shared Dev with a mutex at the call site.
//
// # Datasheets
//
// LPS22HB: https://www.st.com/resource/en/datasheet/lps22hb.pdf
//
// LPS25HB: https://www.st.com/resource/en/datasheet/lps25hb.pdf
package lps2x
