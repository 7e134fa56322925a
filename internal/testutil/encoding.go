package testutil

// EncodedSamplesT holds legacy-charset byte sequences, some of which carry
// character references, for charset normalization tests.
type EncodedSamplesT struct {
	Win1252_SmartQuoteRight []byte
	Win1252_EmDash          []byte
	Win1252_Euro            []byte
	Latin1_OAcute           []byte
	Latin1_CCedilla         []byte
	Latin1_WithEntity       []byte
	ShiftJIS_Long           []byte
	ShiftJIS_Long_UTF8      string
}

// EncodedSamples returns a fresh copy of the samples, safe for mutation.
func EncodedSamples() EncodedSamplesT {
	return EncodedSamplesT{
		Win1252_SmartQuoteRight: []byte("Rand\x92s Opponent"),
		Win1252_EmDash:          []byte("Hello\x97World"),
		Win1252_Euro:            []byte("Price: \x80100"),
		Latin1_OAcute:           []byte("Mir\xf3 - Picasso"),
		Latin1_CCedilla:         []byte("Gar\xe7on"),
		Latin1_WithEntity:       []byte("Gar\xe7on &amp; fille"),

		// "日本語のテキストサンプルです。これは文字化けのテストに使用されます。"
		ShiftJIS_Long: []byte{
			0x93, 0xfa, 0x96, 0x7b, 0x8c, 0xea, 0x82, 0xcc, 0x83, 0x65, 0x83, 0x4c,
			0x83, 0x58, 0x83, 0x67, 0x83, 0x54, 0x83, 0x93, 0x83, 0x76, 0x83, 0x8b,
			0x82, 0xc5, 0x82, 0xb7, 0x81, 0x42, 0x82, 0xb1, 0x82, 0xea, 0x82, 0xcd,
			0x95, 0xb6, 0x8e, 0x9a, 0x89, 0xbb, 0x82, 0xaf, 0x82, 0xcc, 0x83, 0x65,
			0x83, 0x58, 0x83, 0x67, 0x82, 0xc9, 0x8e, 0x67, 0x97, 0x70, 0x82, 0xb3,
			0x82, 0xea, 0x82, 0xdc, 0x82, 0xb7, 0x81, 0x42,
		},
		ShiftJIS_Long_UTF8: "日本語のテキストサンプルです。これは文字化けのテストに使用されます。",
	}
}
