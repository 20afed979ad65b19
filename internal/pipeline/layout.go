package pipeline

import "path/filepath"

// Working directories, relative to the workspace root.
const (
	DirRaw       = "Imagens"
	DirAligned   = "ImagensAlinhadas"
	DirDenoised  = "ImagensSemRuidos"
	DirContours  = "Contornos"
	DirThreshold = "ImagemThreshold"
	DirBinarized = "ImagemBinarizadas"
	DirAnswers   = "Respostas"
	DirWords     = "Respostas1"
	DirResult    = "Resposta"
)

// Layout resolves the working directories under Root.
type Layout struct {
	Root string
}

// Path joins a working directory name onto the root.
func (l Layout) Path(dir string) string {
	return filepath.Join(l.Root, dir)
}
