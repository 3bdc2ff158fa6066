package validators

import "go.mongodb.org/mongo-driver/bson"

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"org_id",
			"name",
			"kind",
			"status",
			"is_active",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"org_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"room", "asset"},
			},

			"location": bson.M{
				"bsonType": "string",
			},

			"category": bson.M{
				"bsonType": "string",
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"hourly_rate": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"available",
					"in_use",
					"maintenance",
					"retired",
				},
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"booking_rule": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"min_duration": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"max_duration": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"advance_booking_hours": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"max_advance_days": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"requires_approval": bson.M{
						"bsonType": "bool",
					},
					"checkout_required": bson.M{
						"bsonType": "bool",
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
