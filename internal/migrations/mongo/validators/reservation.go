package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_name",
			"court_id",
			"start_time",
			"end_time",
			"status",
			"pricing",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"court_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"coach_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"equipment_qty": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "int",
					"minimum":  1,
				},
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"cancelled",
				},
			},

			"pricing": bson.M{
				"bsonType": "object",
				"required": []string{"base", "total"},
				"properties": bson.M{
					"base": bson.M{
						"bsonType": []string{"double", "int", "long", "decimal"},
					},
					"total": bson.M{
						"bsonType": []string{"double", "int", "long", "decimal"},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
