package repository

import "context"

// ImageStorage - объектное хранилище фотографий объявлений
type ImageStorage interface {
	// Upload сохраняет файл и возвращает его публичный URL
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
