// Package dovi implements a codec for Dolby Vision RPU (Reference
// Processing Unit) metadata payloads.
//
// An RPU is the per-frame dynamic metadata record embedded in a Dolby
// Vision video elementary stream: header fields describing the coding
// configuration, optional reshaping curves, optional non-linear
// quantization data for enhancement-layer profiles, and an ordered set of
// display-management extension blocks, protected by a trailing CRC-32.
// This package converts one isolated payload buffer into a structured
// record and back, reproducing the original bit layout exactly when no
// field was changed.
//
// # Basic Usage
//
// To inspect a payload:
//
//	rpu, err := dovi.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rpu.Profile())
//	for _, w := range rpu.Warnings() {
//	    fmt.Println("warning:", w.Error())
//	}
//
// To edit and re-encode:
//
//	rpu.DM.AddLevel1(0, 3079, 1024)
//	out, err := rpu.Serialize()
//
// Parse is lenient by default: checksum mismatches and profile/block
// inconsistencies are returned as warnings on the record rather than
// failing the call. ParseWithOptions with Options{Strict: true} promotes
// them to errors. Structural problems (truncation, malformed block
// lengths) always fail, with the byte offset of the fault.
//
// # Supported Profiles
//
// Profiles 4, 5, 7 and 8 are classified from the header flags. Profile
// conversion helpers (ConvertToMEL, ConvertTo81) transform the structured
// record; they never touch the bit layer directly.
//
// # Scope
//
// The package operates on exactly one byte-aligned RPU payload, beginning
// at the first header field and ending at the trailing marker byte. NAL
// unit framing, emulation-prevention stripping and container demuxing are
// the caller's responsibility.
//
// # Thread Safety
//
// All state is per-call: each Parse or Serialize owns its own cursor and
// record, and the process-wide CRC table is immutable after first use.
// Payloads for independent frames may be processed fully in parallel.
//
// # Reference
//
// Syntax follows ETSI GS CCM 001 (Compound Content Management) and
// SMPTE ST 2094-10 (Dynamic Metadata for Color Volume Transform).
package dovi
