package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"org_id",
			"resource_id",
			"booked_by",
			"title",
			"start_time",
			"end_time",
			"status",
			"created_at",
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

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"booking_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"room", "asset"},
			},

			"booked_by": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"purpose": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			// overdue is derived at read time and never stored.
			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"tentative",
					"confirmed",
					"cancelled",
					"checked_out",
					"returned",
				},
			},

			"attendee_count": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"estimated_cost": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"related_record_id": bson.M{
				"bsonType": "string",
			},

			"recurrence": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"frequency": bson.M{
						"bsonType": "string",
						"enum":     []string{"daily", "weekly", "monthly"},
					},
					"interval": bson.M{
						"bsonType": "int",
						"minimum":  1,
						"maximum":  52,
					},
					"weekdays": bson.M{
						"bsonType": "array",
						"items": bson.M{
							"bsonType": "string",
						},
					},
					"end_date": bson.M{
						"bsonType": "date",
					},
					"occurrences": bson.M{
						"bsonType": "int",
						"minimum":  1,
					},
				},
			},

			"series_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"damage_reported": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
