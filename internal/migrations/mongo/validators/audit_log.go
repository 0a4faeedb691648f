package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditLogValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"action",
			"entity_name",
			"timestamp",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"user_name": bson.M{
				"bsonType": "string",
			},

			"action": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Create",
					"Update",
					"Delete",
				},
			},

			"entity_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"entity_id": bson.M{
				"bsonType": "string",
			},

			"details": bson.M{
				"bsonType": "string",
			},

			"timestamp": bson.M{
				"bsonType": "date",
			},
		},
	},
}
