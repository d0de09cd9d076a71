package mimetypes

import (
	"chat-sim/domain/chat"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	TextPlain       MIME = "text/plain"
	ApplicationPDF  MIME = "application/pdf"
	ApplicationJSON MIME = "application/json"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"

	VideoMP4       MIME = "video/mp4"
	VideoQuicktime MIME = "video/quicktime"
	VideoWEBM      MIME = "video/webm"

	AudioMPEG MIME = "audio/mpeg"
	AudioWAV  MIME = "audio/wav"
	AudioOGG  MIME = "audio/ogg"
)

// chatExtensions are registered with the mime package on top of the system table,
// whose content differs between hosts and misses most audio and video formats.
var chatExtensions = map[string]MIME{
	".jpg":  ImageJPEG,
	".jpeg": ImageJPEG,
	".png":  ImagePNG,
	".gif":  ImageGIF,
	".webp": ImageWEBP,
	".mp4":  VideoMP4,
	".mov":  VideoQuicktime,
	".webm": VideoWEBM,
	".mp3":  AudioMPEG,
	".wav":  AudioWAV,
	".ogg":  AudioOGG,
	".pdf":  ApplicationPDF,
	".json": ApplicationJSON,
	".txt":  TextPlain,
}

func init() {
	for ext, typ := range chatExtensions {
		if err := mime.AddExtensionType(ext, string(typ)); err != nil {
			panic(err)
		}
	}
}

// KindFromMIME maps a media type to the attachment kind shown in a thread.
// Anything that is not image, video or audio is a plain file.
func KindFromMIME(contentType string) chat.AttachmentKind {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return chat.File
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return chat.Image
	case strings.HasPrefix(mt, "video/"):
		return chat.Video
	case strings.HasPrefix(mt, "audio/"):
		return chat.Audio
	default:
		return chat.File
	}
}

// Detect sniffs the first bytes of an upload.
func Detect(content []byte) (MIME, chat.AttachmentKind) {
	detected := mimetype.Detect(content)
	return MIME(detected.String()), KindFromMIME(detected.String())
}

// KindFromName guesses the kind from the file extension through the mime
// extension registry, falling back to File when the extension is unknown.
func KindFromName(name string) chat.AttachmentKind {
	byExt := mime.TypeByExtension(filepath.Ext(name))
	if byExt == "" {
		return chat.File
	}
	return KindFromMIME(byExt)
}
