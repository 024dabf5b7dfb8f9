package models

import "time"

type Category struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:50"`
	Description *string `json:"description" gorm:"type:text"`
	Color       string  `json:"color" gorm:"size:20;default:cyan"`
	Icon        *string `json:"icon" gorm:"size:50"`

	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

// DefaultCategories is the reference data loaded by the seed command.
func DefaultCategories() []Category {
	seed := func(name, description, color, icon string) Category {
		return Category{Name: name, Description: &description, Color: color, Icon: &icon}
	}

	return []Category{
		seed("Cisco Networking", "Routing, Switching, CCNA Preparation", "cyan", "network"),
		seed("Mikrotik", "RouterOS, Wireless, Hotspot", "purple", "wifi"),
		seed("Linux Server", "Ubuntu, CentOS, Server Admin", "pink", "server"),
		seed("Fiber Optic", "FO Cable, OTDR, Splicing", "blue", "cable"),
		seed("Cyber Security", "Firewall, VPN, Security Basics", "cyan", "shield"),
		seed("IoT & Embedded", "Arduino, Raspberry Pi", "purple", "cpu"),
	}
}
