// Package imagefmt reads and writes PNG, JPEG, TGA and BMP images.
//
// Images are plain byte buffers: an [Image] holds tightly packed 8-bit
// pixels in one of the [ColFmt] channel layouts, rows top to bottom. There
// is no palette, no 16-bit storage and no color management; decoders reduce
// everything to that model and encoders accept nothing else.
//
// # Quick Start
//
// Decoding a file, asking for RGBA pixels:
//
//	img, err := imagefmt.Read("photo.png", imagefmt.ColFmtRGBA)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%dx%d, %d bytes\n", img.W, img.H, len(img.Buf))
//
// Reading just the header:
//
//	info, err := imagefmt.ReadInfo("photo.png")
//	// info.W, info.H, info.CT
//
// Writing, with the format taken from the file extension:
//
//	err := imagefmt.Write("out.tga", img, imagefmt.ColTypeAuto)
//
// # Supported Formats
//
//   - PNG: read and write, all color types and bit depths, interlacing,
//     extension chunks through ReadChunks and WithChunks
//   - JPEG: baseline and extended sequential Huffman, read only
//   - TGA: true-color, grayscale and color-mapped, with or without RLE
//   - BMP: 8, 24 and 32 bits per pixel, BI_RGB and BI_BITFIELDS
//
// Format detection never trusts file names: [DetectFormat] looks at the
// leading bytes of the stream, trying PNG, JPEG, BMP and TGA in that order.
//
// # Color Formats
//
// A [ColFmt] fixes both the channels and their order (RGB, BGRA, AY, ...).
// Passing ColFmtAuto to a read keeps whatever layout is natural for the
// source. [Convert] moves an image between any two layouts; color to gray
// uses the ITU-R BT.601 luminance weights.
//
// Encoders take a [ColType] instead, since the on-disk channel order is
// fixed by each format. ColTypeAuto keeps the color type of the source.
//
// # Concurrency
//
// Every function is synchronous and safe for concurrent use. [ReadMany]
// decodes a batch of files in parallel:
//
//	imgs, err := imagefmt.ReadMany(ctx, imagefmt.ColFmtRGB, paths...)
//
// # Error Handling
//
// Every failure is an [*Error] of one of five kinds: invalid data, invalid
// argument, unsupported, internal and I/O. Use errors.Is with the
// sentinels to branch on the kind, or [KindOf] to get it directly:
//
//	_, err := imagefmt.Read("scan.jpg", imagefmt.ColFmtAuto)
//	switch {
//	case errors.Is(err, imagefmt.ErrUnsupported):
//		// valid file, feature not implemented (progressive JPEG, ...)
//	case errors.Is(err, imagefmt.ErrInvalidData):
//		// corrupt or truncated
//	}
//
// # Interoperability
//
// [ToImage] and [FromImage] convert to and from the standard library's
// image.Image, so the decoders can feed image/draw or any resampling
// library and the encoders can write what those produce.
package imagefmt
