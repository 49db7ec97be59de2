package handler

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type canvasRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=255"`
	Memo   *string `json:"memo"`
	Width  *int    `json:"width" validate:"omitempty,gte=1"`
	Height *int    `json:"height" validate:"omitempty,gte=1"`
}

type storeCanvasImageRequest struct {
	AddPictureURL string   `json:"add_picture_url" validate:"required,max=2048"`
	X             *int     `json:"x"`
	Y             *int     `json:"y"`
	Size          *float64 `json:"size" validate:"omitempty,gte=0.1,lte=5"`
	Width         *int     `json:"width" validate:"omitempty,gte=1"`
	Height        *int     `json:"height" validate:"omitempty,gte=1"`
}

type updateCanvasImageRequest struct {
	URI    *string  `json:"uri" validate:"omitempty,max=2048"`
	X      *int     `json:"x"`
	Y      *int     `json:"y"`
	Width  *int     `json:"width" validate:"omitempty,gte=1"`
	Height *int     `json:"height" validate:"omitempty,gte=1"`
	Left   *int     `json:"left" validate:"omitempty,gte=0"`
	Right  *int     `json:"right" validate:"omitempty,gte=0"`
	Top    *int     `json:"top" validate:"omitempty,gte=0"`
	Bottom *int     `json:"bottom" validate:"omitempty,gte=0"`
	Size   *float64 `json:"size" validate:"omitempty,gte=0.1,lte=5"`
}

type counterRequest struct {
	Value *int `json:"value" validate:"required,gte=0"`
}

type carouselRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type carouselImageRequest struct {
	ImageURL string `json:"image_url" validate:"required,max=2048"`
}

type reorderCarouselsRequest struct {
	CarouselIDs []int64 `json:"carousel_ids" validate:"required,min=1"`
}

type reorderImagesRequest struct {
	ImageIDs []int64 `json:"image_ids" validate:"required,min=1"`
}
