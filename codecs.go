package imagefmt

// Codecs register themselves with the registry in init.
import (
	_ "github.com/simonhull/imagefmt/internal/bmp"
	_ "github.com/simonhull/imagefmt/internal/jpeg"
	_ "github.com/simonhull/imagefmt/internal/png"
	_ "github.com/simonhull/imagefmt/internal/tga"
)
