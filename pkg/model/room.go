package model

type Room struct {
	ID           string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string `json:"name" bson:"name" validate:"required,min=1,max=50"`
	Location     string `json:"location" bson:"location" validate:"required,min=1,max=100"`
	Capacity     int    `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	HasProjector bool   `json:"has_projector" bson:"has_projector"`
	HasComputers bool   `json:"has_computers" bson:"has_computers"`
	Description  string `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
}

type RoomUpdate struct {
	Name         string  `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Location     string  `json:"location,omitempty" validate:"omitempty,min=1,max=100"`
	Capacity     *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
	HasProjector *bool   `json:"has_projector,omitempty"`
	HasComputers *bool   `json:"has_computers,omitempty"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=500"`
}
