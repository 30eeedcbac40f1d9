package model

import "sort"

// Reservation 预约模型
type Reservation struct {
	BaseModel
	Name            string          `gorm:"type:varchar(128);not null;default:''" json:"name"`
	PhoneNumber     string          `gorm:"column:phone_number;type:varchar(32);not null;default:''" json:"phone_number"`
	Email           string          `gorm:"type:varchar(255);not null;default:''" json:"email"`
	ReservationDate Date            `gorm:"column:reservation_date;type:date" json:"reservation_date"`
	ReservationTime TimeOfDay       `gorm:"column:reservation_time;type:time" json:"reservation_time"`
	NumberOfGuests  int             `gorm:"column:number_of_guests;not null;default:0" json:"number_of_guests"`
	ContactMethods  []ContactMethod `gorm:"many2many:reservation_contact_methods;joinForeignKey:ReservationID;joinReferences:ContactMethodID" json:"contact_methods"`
}

// TableName 指定表名
func (Reservation) TableName() string {
	return "reservations"
}

// ContactMethodNames 返回去重并排序后的联系方式名称
func (r *Reservation) ContactMethodNames() []string {
	seen := make(map[string]struct{}, len(r.ContactMethods))
	names := make([]string, 0, len(r.ContactMethods))
	for _, m := range r.ContactMethods {
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}
