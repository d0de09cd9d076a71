package mimetypes

import (
	"chat-sim/domain/chat"
	"testing"
)

func TestKindFromMIME(t *testing.T) {
	tests := []struct {
		contentType string
		want        chat.AttachmentKind
	}{
		{"image/jpeg", chat.Image},
		{"image/png; charset=binary", chat.Image},
		{"video/mp4", chat.Video},
		{"audio/mpeg", chat.Audio},
		{"application/pdf", chat.File},
		{"garbage", chat.File},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := KindFromMIME(tt.contentType); got != tt.want {
				t.Errorf("KindFromMIME(%q) = %v; want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	if mt, kind := Detect(png); mt != ImagePNG || kind != chat.Image {
		t.Errorf("Detect(png) = %v, %v", mt, kind)
	}
	if mt, kind := Detect(pdf); mt != ApplicationPDF || kind != chat.File {
		t.Errorf("Detect(pdf) = %v, %v", mt, kind)
	}
}

func TestKindFromName(t *testing.T) {
	tests := []struct {
		name string
		want chat.AttachmentKind
	}{
		{"design_concept.jpg", chat.Image},
		{"HOLIDAY.PNG", chat.Image},
		{"clip.mp4", chat.Video},
		{"voice.mp3", chat.Audio},
		{"report.pdf", chat.File},
		{"README", chat.File},
		{"memo.WAV", chat.Audio},
		{"take.mov", chat.Video},
		{"sticker.webp", chat.Image},
		{"archive.unknownext", chat.File},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindFromName(tt.name); got != tt.want {
				t.Errorf("KindFromName(%q) = %v; want %v", tt.name, got, tt.want)
			}
		})
	}
}
